package tutorial

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Position is a point in the (step, substep) lattice of a curriculum.
// The zero value is Finished and is never a valid position.
type Position struct {
	Step    int `json:"step" yaml:"step"`
	Substep int `json:"substep" yaml:"substep"`
}

// Finished is the terminal sentinel returned by Advance past the last substep.
var Finished = Position{}

func (p Position) IsFinished() bool { return p == Finished }

func (p Position) String() string {
	if p.IsFinished() {
		return "finished"
	}
	return fmt.Sprintf("%d.%d", p.Step, p.Substep)
}

// FetchMode decides how much content one delivery carries.
type FetchMode string

const (
	FetchModeSubstep  FetchMode = "substep"
	FetchModeFullStep FetchMode = "full_step"
)

func ParseFetchMode(raw string) (FetchMode, error) {
	switch FetchMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FetchModeSubstep:
		return FetchModeSubstep, nil
	case FetchModeFullStep:
		return FetchModeFullStep, nil
	default:
		return "", fmt.Errorf("invalid fetch mode %q (allowed: %q, %q)", raw, FetchModeSubstep, FetchModeFullStep)
	}
}

// Curriculum maps step numbers 1..MaxStep to their substep counts.
type Curriculum struct {
	substeps []int
}

func NewCurriculum(steps map[int]int) (Curriculum, error) {
	if len(steps) == 0 {
		return Curriculum{}, errors.New("curriculum has no steps")
	}
	nums := make([]int, 0, len(steps))
	for step := range steps {
		nums = append(nums, step)
	}
	sort.Ints(nums)
	out := make([]int, len(nums))
	for i, step := range nums {
		if step != i+1 {
			return Curriculum{}, fmt.Errorf("curriculum steps must be contiguous from 1: missing step %d", i+1)
		}
		count := steps[step]
		if count < 1 {
			return Curriculum{}, fmt.Errorf("step %d has %d substeps; need at least 1", step, count)
		}
		out[i] = count
	}
	return Curriculum{substeps: out}, nil
}

func (c Curriculum) MaxStep() int { return len(c.substeps) }

// SubstepCount returns 0 for steps outside the curriculum.
func (c Curriculum) SubstepCount(step int) int {
	if step < 1 || step > len(c.substeps) {
		return 0
	}
	return c.substeps[step-1]
}

// Steps returns a copy of the step -> substep count mapping.
func (c Curriculum) Steps() map[int]int {
	out := make(map[int]int, len(c.substeps))
	for i, n := range c.substeps {
		out[i+1] = n
	}
	return out
}

// Contains reports whether p is a position of the curriculum.
func (c Curriculum) Contains(p Position) bool {
	count := c.SubstepCount(p.Step)
	return count > 0 && p.Substep >= 1 && p.Substep <= count
}

// Positions lists every valid position in lexicographic order.
func (c Curriculum) Positions() []Position {
	var out []Position
	for i, n := range c.substeps {
		for sub := 1; sub <= n; sub++ {
			out = append(out, Position{Step: i + 1, Substep: sub})
		}
	}
	return out
}

// Navigator resolves navigation requests against a curriculum. It holds no
// per-session state; callers pass the current position in and store the result.
type Navigator struct {
	curriculum Curriculum
	mode       FetchMode
}

func NewNavigator(curriculum Curriculum, mode FetchMode) *Navigator {
	if mode == "" {
		mode = FetchModeSubstep
	}
	return &Navigator{curriculum: curriculum, mode: mode}
}

func (n *Navigator) Curriculum() Curriculum { return n.curriculum }
func (n *Navigator) Mode() FetchMode        { return n.mode }

func (n *Navigator) Start() Position {
	return Position{Step: 1, Substep: 1}
}

func (n *Navigator) Validate(p Position) error {
	if !n.curriculum.Contains(p) {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, p)
	}
	return nil
}

func (n *Navigator) Advance(cur Position) Position {
	if cur.IsFinished() {
		return Finished
	}
	if cur.Substep < n.curriculum.SubstepCount(cur.Step) {
		return Position{Step: cur.Step, Substep: cur.Substep + 1}
	}
	if cur.Step+1 > n.curriculum.MaxStep() {
		return Finished
	}
	return Position{Step: cur.Step + 1, Substep: 1}
}

func (n *Navigator) JumpTo(step int) (Position, error) {
	if step < 1 || step > n.curriculum.MaxStep() {
		return Position{}, &OutOfRangeError{Requested: step, Max: n.curriculum.MaxStep()}
	}
	return Position{Step: step, Substep: 1}, nil
}

func (n *Navigator) Repeat(cur Position) Position {
	return cur
}

// ContentKeys lists the keys one delivery of p fetches under the navigator's mode.
func (n *Navigator) ContentKeys(p Position) []ContentKey {
	if p.IsFinished() {
		return nil
	}
	if n.mode != FetchModeFullStep {
		return []ContentKey{KeyFor(p)}
	}
	count := n.curriculum.SubstepCount(p.Step)
	keys := make([]ContentKey, 0, count)
	for sub := 1; sub <= count; sub++ {
		keys = append(keys, KeyFor(Position{Step: p.Step, Substep: sub}))
	}
	return keys
}

// Settle returns the position to remember once p has been delivered. In
// full_step mode the whole step went out, so the cursor moves to its last substep.
func (n *Navigator) Settle(p Position) Position {
	if n.mode != FetchModeFullStep || p.IsFinished() {
		return p
	}
	return Position{Step: p.Step, Substep: n.curriculum.SubstepCount(p.Step)}
}

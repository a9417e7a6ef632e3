package tutorial

import (
	"errors"
	"reflect"
	"testing"
)

func mustNavigator(t *testing.T, steps map[int]int, mode FetchMode) *Navigator {
	t.Helper()
	cur, err := NewCurriculum(steps)
	if err != nil {
		t.Fatalf("NewCurriculum: %v", err)
	}
	return NewNavigator(cur, mode)
}

func TestNewCurriculumRejectsBadShapes(t *testing.T) {
	cases := []struct {
		name  string
		steps map[int]int
	}{
		{name: "empty", steps: map[int]int{}},
		{name: "gap", steps: map[int]int{1: 1, 3: 1}},
		{name: "starts_at_zero", steps: map[int]int{0: 1, 1: 1}},
		{name: "zero_substeps", steps: map[int]int{1: 2, 2: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewCurriculum(tc.steps); err == nil {
				t.Fatalf("NewCurriculum(%v): expected error, got nil", tc.steps)
			}
		})
	}
}

func TestNavigatorExampleCurriculum(t *testing.T) {
	nav := mustNavigator(t, map[int]int{1: 2, 2: 1}, FetchModeSubstep)

	start := nav.Start()
	if start != (Position{Step: 1, Substep: 1}) {
		t.Fatalf("Start: want=1.1 got=%s", start)
	}
	steps := []struct {
		from Position
		want Position
	}{
		{from: Position{1, 1}, want: Position{1, 2}},
		{from: Position{1, 2}, want: Position{2, 1}},
		{from: Position{2, 1}, want: Finished},
		{from: Finished, want: Finished},
	}
	for _, s := range steps {
		if got := nav.Advance(s.from); got != s.want {
			t.Fatalf("Advance(%s): want=%s got=%s", s.from, s.want, got)
		}
	}
}

func TestAdvanceVisitsEveryPositionInOrder(t *testing.T) {
	nav := mustNavigator(t, map[int]int{1: 1, 2: 2, 3: 5, 4: 3, 5: 3, 6: 1}, FetchModeSubstep)

	var visited []Position
	for p := nav.Start(); !p.IsFinished(); p = nav.Advance(p) {
		if err := nav.Validate(p); err != nil {
			t.Fatalf("Advance produced invalid position: %v", err)
		}
		visited = append(visited, p)
		if len(visited) > 100 {
			t.Fatalf("Advance did not terminate")
		}
	}
	want := nav.Curriculum().Positions()
	if !reflect.DeepEqual(visited, want) {
		t.Fatalf("visited: want=%v got=%v", want, visited)
	}
}

func TestJumpTo(t *testing.T) {
	nav := mustNavigator(t, map[int]int{1: 2, 2: 1, 3: 4}, FetchModeSubstep)

	for _, p := range nav.Curriculum().Positions() {
		got, err := nav.JumpTo(p.Step)
		if err != nil {
			t.Fatalf("JumpTo(%d): %v", p.Step, err)
		}
		if got.Step != p.Step || got.Substep != 1 {
			t.Fatalf("JumpTo(%d): want=%d.1 got=%s", p.Step, p.Step, got)
		}
	}

	for _, step := range []int{0, -1, 4, 100} {
		_, err := nav.JumpTo(step)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("JumpTo(%d): want ErrOutOfRange got=%v", step, err)
		}
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Fatalf("JumpTo(%d): want *OutOfRangeError got=%T", step, err)
		}
		if oor.Requested != step || oor.Max != 3 {
			t.Fatalf("OutOfRangeError: want requested=%d max=3 got=%+v", step, oor)
		}
	}
}

func TestRepeatIsIdentity(t *testing.T) {
	nav := mustNavigator(t, map[int]int{1: 2, 2: 3}, FetchModeSubstep)
	for _, p := range nav.Curriculum().Positions() {
		if got := nav.Repeat(p); got != p {
			t.Fatalf("Repeat(%s): got=%s", p, got)
		}
	}
}

func TestValidate(t *testing.T) {
	nav := mustNavigator(t, map[int]int{1: 2, 2: 1}, FetchModeSubstep)
	bad := []Position{Finished, {0, 1}, {1, 0}, {1, 3}, {2, 2}, {3, 1}}
	for _, p := range bad {
		if err := nav.Validate(p); !errors.Is(err, ErrInvalidPosition) {
			t.Fatalf("Validate(%+v): want ErrInvalidPosition got=%v", p, err)
		}
	}
}

func TestContentKeysSubstepMode(t *testing.T) {
	nav := mustNavigator(t, map[int]int{1: 2, 2: 3}, FetchModeSubstep)
	got := nav.ContentKeys(Position{2, 2})
	want := []ContentKey{"step2_substep2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ContentKeys: want=%v got=%v", want, got)
	}
	if settled := nav.Settle(Position{2, 2}); settled != (Position{2, 2}) {
		t.Fatalf("Settle: want=2.2 got=%s", settled)
	}
	if keys := nav.ContentKeys(Finished); keys != nil {
		t.Fatalf("ContentKeys(Finished): want=nil got=%v", keys)
	}
}

func TestContentKeysFullStepMode(t *testing.T) {
	nav := mustNavigator(t, map[int]int{1: 2, 2: 3}, FetchModeFullStep)
	got := nav.ContentKeys(Position{2, 1})
	want := []ContentKey{"step2_substep1", "step2_substep2", "step2_substep3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ContentKeys: want=%v got=%v", want, got)
	}
	settled := nav.Settle(Position{2, 1})
	if settled != (Position{2, 3}) {
		t.Fatalf("Settle: want=2.3 got=%s", settled)
	}
	if next := nav.Advance(nav.Settle(Position{1, 1})); next != (Position{2, 1}) {
		t.Fatalf("Advance after settle: want=2.1 got=%s", next)
	}
}

func TestParseFetchMode(t *testing.T) {
	cases := map[string]FetchMode{"": FetchModeSubstep, "substep": FetchModeSubstep, " FULL_STEP ": FetchModeFullStep}
	for raw, want := range cases {
		got, err := ParseFetchMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFetchMode(%q): want=%q got=%q err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseFetchMode("batch"); err == nil {
		t.Fatalf("ParseFetchMode(batch): expected error")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	p := Position{Step: 4, Substep: 12}
	key := KeyFor(p)
	if key != "step4_substep12" {
		t.Fatalf("KeyFor: got=%q", key)
	}
	back, err := ParseKey(string(key))
	if err != nil || back != p {
		t.Fatalf("ParseKey(%q): want=%s got=%s err=%v", key, p, back, err)
	}
	if name := ObjectName(p); name != "Paso4_Subpaso12.txt" {
		t.Fatalf("ObjectName: got=%q", name)
	}
	for _, bad := range []string{"", "4_12", "step4", "stepX_substep1", "step1_subX"} {
		if _, err := ParseKey(bad); err == nil {
			t.Fatalf("ParseKey(%q): expected error", bad)
		}
	}
}

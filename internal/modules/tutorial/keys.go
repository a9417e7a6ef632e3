package tutorial

import (
	"fmt"
	"strconv"
	"strings"
)

// ContentKey identifies one content blob, rendered as "stepN_substepM".
type ContentKey string

func KeyFor(p Position) ContentKey {
	return ContentKey(fmt.Sprintf("step%d_substep%d", p.Step, p.Substep))
}

func (k ContentKey) String() string { return string(k) }

// ParseKey is the inverse of KeyFor.
func ParseKey(raw string) (Position, error) {
	s := strings.TrimSpace(raw)
	stepPart, subPart, ok := strings.Cut(s, "_")
	if !ok || !strings.HasPrefix(stepPart, "step") || !strings.HasPrefix(subPart, "substep") {
		return Position{}, fmt.Errorf("malformed content key %q", raw)
	}
	step, err := strconv.Atoi(strings.TrimPrefix(stepPart, "step"))
	if err != nil {
		return Position{}, fmt.Errorf("malformed content key %q: %w", raw, err)
	}
	sub, err := strconv.Atoi(strings.TrimPrefix(subPart, "substep"))
	if err != nil {
		return Position{}, fmt.Errorf("malformed content key %q: %w", raw, err)
	}
	return Position{Step: step, Substep: sub}, nil
}

// ObjectName is the blob file name a position's text is stored under.
func ObjectName(p Position) string {
	return fmt.Sprintf("Paso%d_Subpaso%d.txt", p.Step, p.Substep)
}

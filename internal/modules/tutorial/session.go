package tutorial

import (
	"fmt"
	"strconv"
	"strings"
)

// Session attribute keys shared by every platform adapter.
const (
	AttrStep      = "step"
	AttrSubstep   = "substep"
	AttrDelivered = "delivered"
	AttrFinished  = "finished"
)

// SessionState is the per-conversation cursor the platform carries between
// turns. Delivered is false while the content at Position has not been sent
// yet, which is the case right after a start.
type SessionState struct {
	Position  Position
	Delivered bool
	Finished  bool
}

// FreshSession is the state of a conversation that has not started: the
// first position, not yet delivered.
func FreshSession() SessionState {
	return SessionState{Position: Position{Step: 1, Substep: 1}}
}

// SessionFromAttributes decodes the cursor from platform attributes. Missing
// attributes yield FreshSession; present but unparsable ones are an error.
func SessionFromAttributes(attrs map[string]string) (SessionState, error) {
	st := FreshSession()
	if len(attrs) == 0 {
		return st, nil
	}
	if raw, ok := attrs[AttrFinished]; ok && strings.TrimSpace(raw) != "" {
		finished, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return SessionState{}, fmt.Errorf("%w: finished=%q", ErrInvalidPosition, raw)
		}
		if finished {
			return SessionState{Position: Finished, Delivered: true, Finished: true}, nil
		}
	}
	rawStep, hasStep := attrs[AttrStep]
	if !hasStep || strings.TrimSpace(rawStep) == "" {
		return st, nil
	}
	step, err := ParseStepSlot(rawStep)
	if err != nil {
		return SessionState{}, fmt.Errorf("%w: step=%q", ErrInvalidPosition, rawStep)
	}
	st.Position = Position{Step: step, Substep: 1}
	if raw := strings.TrimSpace(attrs[AttrSubstep]); raw != "" {
		sub, err := ParseStepSlot(raw)
		if err != nil {
			return SessionState{}, fmt.Errorf("%w: substep=%q", ErrInvalidPosition, raw)
		}
		st.Position.Substep = sub
	}
	// A cursor written without the delivered flag was already served.
	st.Delivered = true
	if raw := strings.TrimSpace(attrs[AttrDelivered]); raw != "" {
		delivered, err := strconv.ParseBool(raw)
		if err != nil {
			return SessionState{}, fmt.Errorf("%w: delivered=%q", ErrInvalidPosition, raw)
		}
		st.Delivered = delivered
	}
	return st, nil
}

// Attributes encodes the cursor as string attributes.
func (s SessionState) Attributes() map[string]string {
	return map[string]string{
		AttrStep:      strconv.Itoa(s.Position.Step),
		AttrSubstep:   strconv.Itoa(s.Position.Substep),
		AttrDelivered: strconv.FormatBool(s.Delivered),
		AttrFinished:  strconv.FormatBool(s.Finished),
	}
}

// StringAttributes flattens loosely typed platform parameters into the string
// form SessionFromAttributes reads. Nil values are dropped.
func StringAttributes(params map[string]any) map[string]string {
	if len(params) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

package tutorial

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Intent is the closed set of requests the tutor understands. Only the
// types in this file implement it.
type Intent interface {
	intent()
	Name() string
}

type StartTutorial struct{}

type NextStep struct{}

type RepeatStep struct{}

type GoToStep struct {
	Step int
}

type Question struct {
	Topic string
	Text  string
}

func (StartTutorial) intent() {}
func (NextStep) intent()      {}
func (RepeatStep) intent()    {}
func (GoToStep) intent()      {}
func (Question) intent()      {}

func (StartTutorial) Name() string { return "start" }
func (NextStep) Name() string      { return "next" }
func (RepeatStep) Name() string    { return "repeat" }
func (GoToStep) Name() string      { return "goto" }
func (Question) Name() string      { return "question" }

// IntentTable maps platform intent names onto intents. Question topics are
// listed explicitly; a name that appears nowhere is rejected.
type IntentTable struct {
	Start  string   `yaml:"start"`
	Next   string   `yaml:"next"`
	Repeat string   `yaml:"repeat"`
	GoTo   string   `yaml:"goto"`
	Topics []string `yaml:"topics"`
}

func DefaultIntentTable() IntentTable {
	return IntentTable{
		Start:  "StartTutorial",
		Next:   "NextStep",
		Repeat: "RepeatStep",
		GoTo:   "GoToStep",
	}
}

func (t IntentTable) isTopic(name string) bool {
	for _, topic := range t.Topics {
		if topic == name {
			return true
		}
	}
	return false
}

// Resolve turns a platform intent name plus its payload into an Intent.
// stepSlot is only read for the goto intent and text only for topics.
func (t IntentTable) Resolve(name, stepSlot, text string) (Intent, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: empty intent name", ErrUnsupportedIntent)
	case name == t.Start:
		return StartTutorial{}, nil
	case name == t.Next:
		return NextStep{}, nil
	case name == t.Repeat:
		return RepeatStep{}, nil
	case name == t.GoTo:
		step, err := ParseStepSlot(stepSlot)
		if err != nil {
			return nil, err
		}
		return GoToStep{Step: step}, nil
	case t.isTopic(name):
		return Question{Topic: name, Text: text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedIntent, name)
	}
}

// ParseStepSlot reads a step number as platforms send it: "3", "3.0" or " 3 ".
// Values beyond the int32 range are rejected as invalid.
func ParseStepSlot(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: missing step number", ErrInvalidStepSlot)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStepSlot, raw)
	}
	return int(f), nil
}

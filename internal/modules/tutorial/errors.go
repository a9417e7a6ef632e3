package tutorial

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange        = errors.New("step out of range")
	ErrInvalidPosition   = errors.New("invalid tutorial position")
	ErrUnsupportedIntent = errors.New("unsupported intent")
	ErrInvalidStepSlot   = errors.New("invalid step slot")
)

// OutOfRangeError is returned by JumpTo for steps outside [1, Max].
type OutOfRangeError struct {
	Requested int
	Max       int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("step %d out of range [1, %d]", e.Requested, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

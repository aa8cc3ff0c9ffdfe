package training

import (
	"errors"
	"fmt"
)

// Sentinel kinds for submission validation errors.
var (
	ErrUnknownModule   = errors.New("unknown training module")
	ErrScoreOutOfRange = errors.New("score out of range")
)

// NewUnknownModule wraps ErrUnknownModule with the offending id.
func NewUnknownModule(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownModule, id)
}

// NewScoreOutOfRange wraps ErrScoreOutOfRange with the offending value.
func NewScoreOutOfRange(score int) error {
	return fmt.Errorf("%w: %d not in [%d,%d]", ErrScoreOutOfRange, score, MinScore, MaxScore)
}

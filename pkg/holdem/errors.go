package holdem

import (
	"errors"
	"fmt"
)

// ValidationError is a rejection of an attempted action. The hand state is
// unchanged and the error is safe to report back to the offending player.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// validation errors
var (
	ErrNotYourTurn       = newValidationError("it is not your turn")
	ErrNotInHand         = newValidationError("you are not in this hand")
	ErrNotInBettingRound = newValidationError("the hand is not in a betting round")
	ErrMustCallOrRaise   = newValidationError("you must call or raise")
	ErrNothingToCall     = newValidationError("there is nothing to call")
	ErrInsufficientChips = newValidationError("you do not have enough chips")
	ErrActionNotReopened = newValidationError("you may only call or fold")
	ErrCannotRevealYet   = newValidationError("you can only show your cards at showdown")
)

// RaiseTooSmallError is returned when a raise is below the table minimum and
// is not an all-in
type RaiseTooSmallError struct {
	Minimum int
}

func (e *RaiseTooSmallError) Error() string {
	return fmt.Sprintf("you must raise to at least %d", e.Minimum)
}

// ErrChipConservation signals that the chip total drifted mid-hand. The hand
// is aborted and stacks are rolled back when this is detected.
var ErrChipConservation = errors.New("chip totals no longer balance")

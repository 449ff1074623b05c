package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a state transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")

	// ErrTerminalState is returned when a transition is fired from a terminal state
	ErrTerminalState = errors.New("workflow is in a terminal state")
)

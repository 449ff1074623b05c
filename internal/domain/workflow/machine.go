package workflow

import "fmt"

// transitions maps each state to the set of states it may move to. The
// lifecycle is a total order except for the denied branch, which exits from
// OWNER_RESPONDED.
var transitions = map[State][]State{
	StateSubmitted:              {StateOwnerNotified},
	StateOwnerNotified:          {StateOwnerResponded},
	StateOwnerResponded:         {StateDecisionMade, StateClosedDenied},
	StateDecisionMade:           {StateVendorContacted, StateInProgress},
	StateVendorContacted:        {StateAwaitingVendorResponse},
	StateAwaitingVendorResponse: {StateETAConfirmed},
	StateETAConfirmed:           {StateTenantNotified},
	StateTenantNotified:         {StateInProgress},
	StateInProgress:             {StateCompleted},
	StateCompleted:              {},
	StateClosedDenied:           {},
}

// CanTransition returns true if moving from one state to another is permitted
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates returns the states reachable from the given state
func NextStates(from State) []State {
	next := transitions[from]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// Machine tracks the current state of one workflow and validates transitions.
// It holds no persistence; callers commit the resulting state themselves.
type Machine struct {
	current State
}

// NewMachine creates a machine positioned at the given state
func NewMachine(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, initial)
	}
	return &Machine{current: initial}, nil
}

// State returns the current state
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if a transition to the target state is permitted
func (m *Machine) CanFire(to State) bool {
	return CanTransition(m.current, to)
}

// Fire moves the machine to the target state if the transition is permitted
func (m *Machine) Fire(to State) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidState, to)
	}
	if m.current.IsTerminal() {
		return fmt.Errorf("%w: cannot leave %s", ErrTerminalState, m.current)
	}
	if !CanTransition(m.current, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}
	m.current = to
	return nil
}

package workflow

// State represents a workflow state in the maintenance lifecycle
type State string

const (
	StateSubmitted              State = "SUBMITTED"
	StateOwnerNotified          State = "OWNER_NOTIFIED"
	StateOwnerResponded         State = "OWNER_RESPONDED"
	StateDecisionMade           State = "DECISION_MADE"
	StateVendorContacted        State = "VENDOR_CONTACTED"
	StateAwaitingVendorResponse State = "AWAITING_VENDOR_RESPONSE"
	StateETAConfirmed           State = "ETA_CONFIRMED"
	StateTenantNotified         State = "TENANT_NOTIFIED"
	StateInProgress             State = "IN_PROGRESS"
	StateCompleted              State = "COMPLETED"
	StateClosedDenied           State = "CLOSED_DENIED"
)

var validStates = map[State]bool{
	StateSubmitted:              true,
	StateOwnerNotified:          true,
	StateOwnerResponded:         true,
	StateDecisionMade:           true,
	StateVendorContacted:        true,
	StateAwaitingVendorResponse: true,
	StateETAConfirmed:           true,
	StateTenantNotified:         true,
	StateInProgress:             true,
	StateCompleted:              true,
	StateClosedDenied:           true,
}

var terminalStates = map[State]bool{
	StateCompleted:    true,
	StateClosedDenied: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

package models

import "time"

// WorkflowCommunication is one append-only audit entry on a workflow's
// timeline. Entries are never mutated or deleted.
type WorkflowCommunication struct {
	ID         string                `json:"id"`
	WorkflowID string                `json:"workflow_id"`
	SenderType string                `json:"sender_type"` // tenant, owner, vendor, system
	SenderID   string                `json:"sender_id,omitempty"`
	SenderName string                `json:"sender_name"`
	Message    string                `json:"message"`
	Metadata   CommunicationMetadata `json:"metadata"`
	CreatedAt  time.Time             `json:"created_at"`
}

// CommunicationMetadata carries the structured context of an audit entry.
// Transition entries record from/to so the log doubles as state history.
type CommunicationMetadata struct {
	Action        string  `json:"action,omitempty"`
	FromState     string  `json:"from_state,omitempty"`
	ToState       string  `json:"to_state,omitempty"`
	Response      string  `json:"response,omitempty"`
	VendorID      string  `json:"vendor_id,omitempty"`
	ETA           string  `json:"eta,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	MinConfidence float64 `json:"min_confidence,omitempty"`
	CostRange     string  `json:"cost_range,omitempty"`
	MaxCostRange  string  `json:"max_cost_range,omitempty"`
	Cost          float64 `json:"cost,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// Sender type constants
const (
	SenderTypeTenant = "tenant"
	SenderTypeOwner  = "owner"
	SenderTypeVendor = "vendor"
	SenderTypeSystem = "system"
)

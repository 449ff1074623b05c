package models

import "time"

// MaintenanceWorkflow tracks one maintenance request from submission to
// resolution or denial. One workflow per request; the workflow engine is the
// only writer.
type MaintenanceWorkflow struct {
	ID                   string     `json:"id"`
	MaintenanceRequestID string     `json:"maintenance_request_id"`
	CurrentState         string     `json:"current_state"`
	Version              int64      `json:"version"` // optimistic concurrency counter
	AIAnalysis           AIAnalysis `json:"ai_analysis"`
	OwnerResponse        string     `json:"owner_response,omitempty"` // approved, denied, question
	OwnerResponseMessage string     `json:"owner_response_message,omitempty"`
	VendorMessage        string     `json:"vendor_message,omitempty"`
	VendorETA            *time.Time `json:"vendor_eta,omitempty"`
	VendorNotes          string     `json:"vendor_notes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Owner response constants
const (
	OwnerResponseApproved = "approved"
	OwnerResponseDenied   = "denied"
	OwnerResponseQuestion = "question"
)

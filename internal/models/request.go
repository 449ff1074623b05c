package models

import "time"

// MaintenanceRequest represents a tenant-submitted maintenance issue
type MaintenanceRequest struct {
	ID           string     `json:"id"`
	LeaseID      string     `json:"lease_id"`
	Description  string     `json:"description"`
	Category     string     `json:"category"` // plumbing, electrical, heating, appliance, structural, pest, damp, access, other
	Urgency      string     `json:"urgency"`  // low, medium, high, emergency
	Status       string     `json:"status"`   // open, in_progress, completed, closed_denied
	ContractorID string     `json:"contractor_id,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Cost         *float64   `json:"cost,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Request status constants
const (
	RequestStatusOpen         = "open"
	RequestStatusInProgress   = "in_progress"
	RequestStatusCompleted    = "completed"
	RequestStatusClosedDenied = "closed_denied"
)

// Category constants
const (
	CategoryPlumbing   = "plumbing"
	CategoryElectrical = "electrical"
	CategoryHeating    = "heating"
	CategoryAppliance  = "appliance"
	CategoryStructural = "structural"
	CategoryPest       = "pest"
	CategoryDamp       = "damp"
	CategoryAccess     = "access"
	CategoryOther      = "other"
)

// Urgency constants
const (
	UrgencyLow       = "low"
	UrgencyMedium    = "medium"
	UrgencyHigh      = "high"
	UrgencyEmergency = "emergency"
)

// ValidCategories lists every category the classifier may emit
var ValidCategories = map[string]bool{
	CategoryPlumbing:   true,
	CategoryElectrical: true,
	CategoryHeating:    true,
	CategoryAppliance:  true,
	CategoryStructural: true,
	CategoryPest:       true,
	CategoryDamp:       true,
	CategoryAccess:     true,
	CategoryOther:      true,
}

// ValidUrgencies lists every urgency level the classifier may emit
var ValidUrgencies = map[string]bool{
	UrgencyLow:       true,
	UrgencyMedium:    true,
	UrgencyHigh:      true,
	UrgencyEmergency: true,
}

package models

// AutoApprovalPolicy is the landlord-configured rule set that lets low-risk,
// high-confidence requests skip manual owner review. Configured outside this
// service and supplied with the submit event.
type AutoApprovalPolicy struct {
	Enabled          bool    `json:"enabled"`
	MinConfidence    float64 `json:"min_confidence"`
	MaxCostRange     string  `json:"max_cost_range"` // low, medium, high
	ExcludeEmergency bool    `json:"exclude_emergency"`
}

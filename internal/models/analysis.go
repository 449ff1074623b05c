package models

// AIAnalysis is the classifier's verdict on a maintenance request. Produced
// once at submission and never mutated afterward.
type AIAnalysis struct {
	Category           string  `json:"category"`
	Urgency            string  `json:"urgency"`
	EstimatedCostRange string  `json:"estimated_cost_range"` // low, medium, high
	VendorRequired     bool    `json:"vendor_required"`
	Reasoning          string  `json:"reasoning"`
	ConfidenceScore    float64 `json:"confidence_score"` // 0.0 - 1.0
	Degraded           bool    `json:"degraded,omitempty"`
}

// Cost band constants
const (
	CostRangeLow    = "low"
	CostRangeMedium = "medium"
	CostRangeHigh   = "high"
)

var costRangeRank = map[string]int{
	CostRangeLow:    0,
	CostRangeMedium: 1,
	CostRangeHigh:   2,
}

// CostRangeRank returns the ordering rank of a cost band (low < medium < high)
// and false for an unknown band.
func CostRangeRank(band string) (int, bool) {
	rank, ok := costRangeRank[band]
	return rank, ok
}

// ValidCostRanges lists every cost band the classifier may emit
var ValidCostRanges = map[string]bool{
	CostRangeLow:    true,
	CostRangeMedium: true,
	CostRangeHigh:   true,
}

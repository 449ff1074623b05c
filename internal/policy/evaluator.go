// Package policy evaluates landlord-configured auto-approval rules against
// classifier output. Evaluation is pure; the workflow engine records the
// outcome on the audit trail.
package policy

import (
	"fmt"

	"github.com/propai/maintenance-workflow/internal/models"
)

// Decision is the outcome of evaluating a policy against an analysis. Reason
// explains which condition failed (or why the request passed) in language
// suitable for the workflow's audit log.
type Decision struct {
	Approved bool
	Reason   string
}

// Validate ensures a policy's values are usable before evaluation
func Validate(p models.AutoApprovalPolicy) error {
	if p.MinConfidence < 0.0 || p.MinConfidence > 1.0 {
		return fmt.Errorf("min_confidence must be between 0.0 and 1.0, got %.2f", p.MinConfidence)
	}
	if p.Enabled && p.MaxCostRange == "" {
		return fmt.Errorf("max_cost_range is required when auto-approval is enabled")
	}
	if p.MaxCostRange != "" {
		if _, ok := models.CostRangeRank(p.MaxCostRange); !ok {
			return fmt.Errorf("max_cost_range must be one of low, medium, high, got %q", p.MaxCostRange)
		}
	}
	return nil
}

// Evaluate decides whether a classified request bypasses owner review.
// Conditions are checked in a fixed order: disabled, confidence floor, cost
// ceiling, emergency exclusion.
func Evaluate(p models.AutoApprovalPolicy, analysis models.AIAnalysis) Decision {
	if !p.Enabled {
		return Decision{Approved: false, Reason: "auto-approval disabled"}
	}

	if analysis.ConfidenceScore < p.MinConfidence {
		return Decision{
			Approved: false,
			Reason: fmt.Sprintf("confidence %.2f below required %.2f",
				analysis.ConfidenceScore, p.MinConfidence),
		}
	}

	costRank, ok := models.CostRangeRank(analysis.EstimatedCostRange)
	if !ok {
		return Decision{
			Approved: false,
			Reason:   fmt.Sprintf("unrecognized cost range %q", analysis.EstimatedCostRange),
		}
	}
	maxRank, ok := models.CostRangeRank(p.MaxCostRange)
	if !ok {
		return Decision{
			Approved: false,
			Reason:   fmt.Sprintf("unrecognized cost ceiling %q", p.MaxCostRange),
		}
	}
	if costRank > maxRank {
		return Decision{
			Approved: false,
			Reason: fmt.Sprintf("estimated cost %s exceeds ceiling %s",
				analysis.EstimatedCostRange, p.MaxCostRange),
		}
	}

	if p.ExcludeEmergency && analysis.Urgency == models.UrgencyEmergency {
		return Decision{Approved: false, Reason: "emergency requests require owner review"}
	}

	return Decision{
		Approved: true,
		Reason: fmt.Sprintf("confidence %.2f >= %.2f, cost %s within ceiling %s",
			analysis.ConfidenceScore, p.MinConfidence,
			analysis.EstimatedCostRange, p.MaxCostRange),
	}
}

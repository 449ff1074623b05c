package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/propai/maintenance-workflow/internal/models"
)

func standardPolicy() models.AutoApprovalPolicy {
	return models.AutoApprovalPolicy{
		Enabled:          true,
		MinConfidence:    0.8,
		MaxCostRange:     models.CostRangeMedium,
		ExcludeEmergency: true,
	}
}

func TestEvaluate_DisabledPolicy(t *testing.T) {
	p := standardPolicy()
	p.Enabled = false

	// Disabled short-circuits everything, even a perfect analysis
	d := Evaluate(p, models.AIAnalysis{
		ConfidenceScore:    1.0,
		EstimatedCostRange: models.CostRangeLow,
		Urgency:            models.UrgencyLow,
	})

	assert.False(t, d.Approved)
	assert.Contains(t, d.Reason, "disabled")
}

func TestEvaluate_ConfidenceFloor(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		costRange  string
		approved   bool
	}{
		{"below floor low cost", 0.79, models.CostRangeLow, false},
		{"below floor high cost", 0.5, models.CostRangeHigh, false},
		{"at floor", 0.8, models.CostRangeLow, true},
		{"above floor", 0.95, models.CostRangeLow, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(standardPolicy(), models.AIAnalysis{
				ConfidenceScore:    tt.confidence,
				EstimatedCostRange: tt.costRange,
				Urgency:            models.UrgencyMedium,
			})
			assert.Equal(t, tt.approved, d.Approved, d.Reason)
		})
	}
}

func TestEvaluate_CostCeiling(t *testing.T) {
	d := Evaluate(standardPolicy(), models.AIAnalysis{
		ConfidenceScore:    0.85,
		EstimatedCostRange: models.CostRangeLow,
		Urgency:            models.UrgencyHigh,
	})
	assert.True(t, d.Approved, d.Reason)

	d = Evaluate(standardPolicy(), models.AIAnalysis{
		ConfidenceScore:    0.85,
		EstimatedCostRange: models.CostRangeHigh,
		Urgency:            models.UrgencyHigh,
	})
	assert.False(t, d.Approved)
	assert.Contains(t, d.Reason, "exceeds ceiling")
}

func TestEvaluate_EmergencyExclusion(t *testing.T) {
	d := Evaluate(standardPolicy(), models.AIAnalysis{
		ConfidenceScore:    0.9,
		EstimatedCostRange: models.CostRangeLow,
		Urgency:            models.UrgencyEmergency,
	})
	assert.False(t, d.Approved)
	assert.Contains(t, d.Reason, "emergency")

	// Same analysis passes when the exclusion is off
	p := standardPolicy()
	p.ExcludeEmergency = false
	d = Evaluate(p, models.AIAnalysis{
		ConfidenceScore:    0.9,
		EstimatedCostRange: models.CostRangeLow,
		Urgency:            models.UrgencyEmergency,
	})
	assert.True(t, d.Approved, d.Reason)
}

func TestEvaluate_UnknownCostRange(t *testing.T) {
	d := Evaluate(standardPolicy(), models.AIAnalysis{
		ConfidenceScore:    0.9,
		EstimatedCostRange: "astronomical",
		Urgency:            models.UrgencyLow,
	})
	assert.False(t, d.Approved)
	assert.Contains(t, d.Reason, "unrecognized cost range")
}

func TestEvaluate_ApprovedReasonCarriesNumbers(t *testing.T) {
	d := Evaluate(standardPolicy(), models.AIAnalysis{
		ConfidenceScore:    0.85,
		EstimatedCostRange: models.CostRangeMedium,
		Urgency:            models.UrgencyMedium,
	})
	assert.True(t, d.Approved)
	assert.Contains(t, d.Reason, "0.85")
	assert.Contains(t, d.Reason, "0.80")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  models.AutoApprovalPolicy
		wantErr bool
	}{
		{"valid", standardPolicy(), false},
		{"confidence above one", models.AutoApprovalPolicy{MinConfidence: 1.2, MaxCostRange: "low"}, true},
		{"negative confidence", models.AutoApprovalPolicy{MinConfidence: -0.1, MaxCostRange: "low"}, true},
		{"bad cost range", models.AutoApprovalPolicy{MinConfidence: 0.5, MaxCostRange: "extreme"}, true},
		{"enabled without cost ceiling", models.AutoApprovalPolicy{Enabled: true, MinConfidence: 0.5}, true},
		{"disabled without cost ceiling", models.AutoApprovalPolicy{MinConfidence: 0.5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.policy)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package ai

import (
	"regexp"

	"github.com/propai/maintenance-workflow/internal/models"
)

const fallbackConfidence = 0.65

// keywordFamily pairs a category regex with the urgency assigned on match
// and an optional escalation regex that raises the urgency.
type keywordFamily struct {
	category   string
	pattern    *regexp.Regexp
	urgency    string
	escalate   *regexp.Regexp
	escalateTo string
}

// keywordFamilies are evaluated in order; the first category match wins.
// All patterns are case-insensitive.
var keywordFamilies = []keywordFamily{
	{
		category:   models.CategoryPlumbing,
		pattern:    regexp.MustCompile(`(?i)\b(leak|water|pipe|drain|toilet|sink|tap|faucet)\b`),
		urgency:    models.UrgencyMedium,
		escalate:   regexp.MustCompile(`(?i)\b(flood|burst|major)\b`),
		escalateTo: models.UrgencyHigh,
	},
	{
		category: models.CategoryElectrical,
		pattern:  regexp.MustCompile(`(?i)\b(electric\w*|power|outlet|socket|light|switch|fuse|wiring)\b`),
		urgency:  models.UrgencyHigh,
	},
	{
		category:   models.CategoryHeating,
		pattern:    regexp.MustCompile(`(?i)\b(heat\w*|boiler|furnace|radiator|thermostat|cooling|hvac|temperature)\b`),
		urgency:    models.UrgencyMedium,
		escalate:   regexp.MustCompile(`(?i)(no heat|no hot water|freezing)`),
		escalateTo: models.UrgencyHigh,
	},
	{
		category: models.CategoryAppliance,
		pattern:  regexp.MustCompile(`(?i)\b(appliance|fridge|freezer|oven|stove|cooker|washer|washing machine|dryer|dishwasher)\b`),
		urgency:  models.UrgencyMedium,
	},
	{
		category: models.CategoryDamp,
		pattern:  regexp.MustCompile(`(?i)\b(damp|mou?ld|mildew|moisture|condensation)\b`),
		urgency:  models.UrgencyMedium,
	},
	{
		category: models.CategoryPest,
		pattern:  regexp.MustCompile(`(?i)\b(pest|mice|mouse|rats?|cockroach\w*|wasps?|ants|infest\w*|vermin)\b`),
		urgency:  models.UrgencyMedium,
	},
	{
		category: models.CategoryStructural,
		pattern:  regexp.MustCompile(`(?i)\b(roof|ceiling|crack\w*|subsidence|foundation|gutter|brickwork)\b`),
		urgency:  models.UrgencyMedium,
	},
	{
		category: models.CategoryAccess,
		pattern:  regexp.MustCompile(`(?i)\b(locks?|keys?|locked out|door|window)\b`),
		urgency:  models.UrgencyMedium,
	},
}

var emergencyPattern = regexp.MustCompile(`(?i)\b(emergency|urgent|flood\w*|fire|gas|sparking|dangerous)\b`)

// FallbackAnalysis produces a deterministic keyword-based analysis for when
// the LLM is unavailable or kept returning unusable responses. Identical
// input always yields identical output.
func FallbackAnalysis(description string) models.AIAnalysis {
	category := models.CategoryOther
	urgency := models.UrgencyMedium

	for _, family := range keywordFamilies {
		if !family.pattern.MatchString(description) {
			continue
		}
		category = family.category
		urgency = family.urgency
		if family.escalate != nil && family.escalate.MatchString(description) {
			urgency = family.escalateTo
		}
		break
	}

	if emergencyPattern.MatchString(description) {
		urgency = models.UrgencyEmergency
	}

	return models.AIAnalysis{
		Category:           category,
		Urgency:            urgency,
		EstimatedCostRange: fallbackCostRange(urgency),
		VendorRequired:     fallbackVendorRequired(category, urgency),
		Reasoning:          "Automated keyword-based analysis; AI classification unavailable.",
		ConfidenceScore:    fallbackConfidence,
		Degraded:           true,
	}
}

func fallbackCostRange(urgency string) string {
	switch urgency {
	case models.UrgencyEmergency:
		return models.CostRangeHigh
	case models.UrgencyLow:
		return models.CostRangeLow
	default:
		return models.CostRangeMedium
	}
}

// fallbackVendorRequired errs on the side of sending a contractor; only
// low-stakes access and uncategorized issues are left to the tenant.
func fallbackVendorRequired(category, urgency string) bool {
	if urgency == models.UrgencyLow &&
		(category == models.CategoryAccess || category == models.CategoryOther) {
		return false
	}
	return true
}

// Package ai classifies maintenance requests and drafts vendor outreach
// messages. Classification calls an LLM with bounded retries and degrades to
// a deterministic rule-based analysis on exhaustion; it never returns an
// error to its caller.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/models"
)

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 500 * time.Millisecond
)

// categoryRemap maps model-invented categories to the nearest enum value
var categoryRemap = map[string]string{
	"hvac":        models.CategoryHeating,
	"cooling":     models.CategoryHeating,
	"cosmetic":    models.CategoryOther,
	"mold":        models.CategoryDamp,
	"mould":       models.CategoryDamp,
	"moisture":    models.CategoryDamp,
	"locks":       models.CategoryAccess,
	"lockout":     models.CategoryAccess,
	"security":    models.CategoryAccess,
	"carpentry":   models.CategoryStructural,
	"roofing":     models.CategoryStructural,
	"gas":         models.CategoryHeating,
	"landscaping": models.CategoryOther,
}

// Classifier maps free-text issue descriptions to a structured analysis
type Classifier struct {
	client      ChatClient
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// NewClassifier creates a classifier with the default retry budget
func NewClassifier(client ChatClient, logger *zap.Logger) *Classifier {
	return &Classifier{
		client:      client,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultRetryBackoff,
		logger:      logger,
	}
}

// rawAnalysis mirrors the expected LLM response with pointer fields so that
// missing keys are distinguishable from zero values.
type rawAnalysis struct {
	Category           *string  `json:"category"`
	Urgency            *string  `json:"urgency"`
	EstimatedCostRange *string  `json:"estimated_cost_range"`
	VendorRequired     *bool    `json:"vendor_required"`
	Reasoning          *string  `json:"reasoning"`
	ConfidenceScore    *float64 `json:"confidence_score"`
}

// Classify analyzes a maintenance request description. It attempts the LLM
// up to the retry cap and falls back to keyword analysis on exhaustion, so
// the returned analysis is always usable; Degraded marks the fallback path.
func (c *Classifier) Classify(ctx context.Context, description, unitAddress, tenantName string) models.AIAnalysis {
	userPrompt := buildClassificationPrompt(description, unitAddress, tenantName)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				c.logger.Warn("Classification cancelled, using fallback", zap.Error(ctx.Err()))
				return FallbackAnalysis(description)
			}
		}

		content, err := c.client.Complete(ctx, classificationSystemPrompt, userPrompt)
		if err != nil {
			c.logger.Warn("Classification attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		analysis, err := parseAnalysis(content)
		if err != nil {
			c.logger.Warn("Classification response invalid",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		c.logger.Info("Maintenance request classified",
			zap.String("category", analysis.Category),
			zap.String("urgency", analysis.Urgency),
			zap.Bool("vendor_required", analysis.VendorRequired),
			zap.Float64("confidence", analysis.ConfidenceScore))
		return analysis
	}

	c.logger.Warn("Classification attempts exhausted, using rule-based fallback",
		zap.Int("attempts", c.maxAttempts))
	return FallbackAnalysis(description)
}

// parseAnalysis validates an LLM response into a well-formed analysis.
// Responses with missing fields or out-of-enum urgency/cost values are
// rejected rather than patched; categories outside the enum are remapped.
func parseAnalysis(content string) (models.AIAnalysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(extractJSON(content)), &raw); err != nil {
		return models.AIAnalysis{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if raw.Category == nil || raw.Urgency == nil || raw.EstimatedCostRange == nil ||
		raw.VendorRequired == nil || raw.Reasoning == nil || raw.ConfidenceScore == nil {
		return models.AIAnalysis{}, fmt.Errorf("response missing required fields")
	}

	category := strings.ToLower(strings.TrimSpace(*raw.Category))
	if !models.ValidCategories[category] {
		if mapped, ok := categoryRemap[category]; ok {
			category = mapped
		} else {
			category = models.CategoryOther
		}
	}

	urgency := strings.ToLower(strings.TrimSpace(*raw.Urgency))
	if !models.ValidUrgencies[urgency] {
		return models.AIAnalysis{}, fmt.Errorf("invalid urgency %q", urgency)
	}

	costRange := strings.ToLower(strings.TrimSpace(*raw.EstimatedCostRange))
	if !models.ValidCostRanges[costRange] {
		return models.AIAnalysis{}, fmt.Errorf("invalid cost range %q", costRange)
	}

	confidence := *raw.ConfidenceScore
	if confidence < 0.0 {
		confidence = 0.0
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	return models.AIAnalysis{
		Category:           category,
		Urgency:            urgency,
		EstimatedCostRange: costRange,
		VendorRequired:     *raw.VendorRequired,
		Reasoning:          *raw.Reasoning,
		ConfidenceScore:    confidence,
	}, nil
}

// extractJSON strips markdown code fences some models wrap around JSON
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	content = strings.TrimPrefix(content, "json")
	if idx := strings.LastIndex(content, "```"); idx >= 0 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}

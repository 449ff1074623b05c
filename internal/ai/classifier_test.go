package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propai/maintenance-workflow/internal/models"
)

// fakeChatClient returns canned responses in sequence
type fakeChatClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.responses) {
		return "", errors.New("no more responses")
	}
	if f.errs != nil && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	return f.responses[idx], nil
}

func newTestClassifier(client ChatClient) *Classifier {
	c := NewClassifier(client, zap.NewNop())
	c.backoff = time.Millisecond
	return c
}

const validResponse = `{
	"category": "plumbing",
	"urgency": "high",
	"estimated_cost_range": "medium",
	"vendor_required": true,
	"reasoning": "Active leak under the kitchen sink needs a plumber.",
	"confidence_score": 0.92
}`

func TestClassify_ValidResponse(t *testing.T) {
	client := &fakeChatClient{responses: []string{validResponse}}
	c := newTestClassifier(client)

	analysis := c.Classify(context.Background(), "water leaking under kitchen sink", "", "")

	assert.Equal(t, models.CategoryPlumbing, analysis.Category)
	assert.Equal(t, models.UrgencyHigh, analysis.Urgency)
	assert.Equal(t, models.CostRangeMedium, analysis.EstimatedCostRange)
	assert.True(t, analysis.VendorRequired)
	assert.Equal(t, 0.92, analysis.ConfidenceScore)
	assert.False(t, analysis.Degraded)
	assert.Equal(t, 1, client.calls)
}

func TestClassify_MarkdownFencedResponse(t *testing.T) {
	client := &fakeChatClient{responses: []string{"```json\n" + validResponse + "\n```"}}
	c := newTestClassifier(client)

	analysis := c.Classify(context.Background(), "leak", "", "")

	assert.Equal(t, models.CategoryPlumbing, analysis.Category)
	assert.False(t, analysis.Degraded)
}

func TestClassify_CategoryRemap(t *testing.T) {
	tests := []struct {
		modelCategory string
		want          string
	}{
		{"hvac", models.CategoryHeating},
		{"cosmetic", models.CategoryOther},
		{"mold", models.CategoryDamp},
		{"completely made up", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.modelCategory, func(t *testing.T) {
			resp := `{
				"category": "` + tt.modelCategory + `",
				"urgency": "medium",
				"estimated_cost_range": "low",
				"vendor_required": false,
				"reasoning": "r",
				"confidence_score": 0.8
			}`
			c := newTestClassifier(&fakeChatClient{responses: []string{resp}})

			analysis := c.Classify(context.Background(), "something", "", "")
			assert.Equal(t, tt.want, analysis.Category)
		})
	}
}

func TestClassify_RetriesOnInvalidJSON(t *testing.T) {
	client := &fakeChatClient{responses: []string{
		"I think this is a plumbing issue.",
		validResponse,
	}}
	c := newTestClassifier(client)

	analysis := c.Classify(context.Background(), "leak", "", "")

	assert.Equal(t, models.CategoryPlumbing, analysis.Category)
	assert.False(t, analysis.Degraded)
	assert.Equal(t, 2, client.calls)
}

func TestClassify_RetriesOnMissingFields(t *testing.T) {
	client := &fakeChatClient{responses: []string{
		`{"category": "plumbing", "urgency": "high"}`,
		validResponse,
	}}
	c := newTestClassifier(client)

	analysis := c.Classify(context.Background(), "leak", "", "")

	assert.False(t, analysis.Degraded)
	assert.Equal(t, 2, client.calls)
}

func TestClassify_FallbackAfterExhaustion(t *testing.T) {
	failure := errors.New("connection refused")
	client := &fakeChatClient{
		responses: []string{"", "", ""},
		errs:      []error{failure, failure, failure},
	}
	c := newTestClassifier(client)

	analysis := c.Classify(context.Background(), "water leaking from the bathroom pipe", "", "")

	assert.Equal(t, 3, client.calls)
	assert.True(t, analysis.Degraded)
	assert.Equal(t, models.CategoryPlumbing, analysis.Category)
	assert.Equal(t, fallbackConfidence, analysis.ConfidenceScore)
}

func TestClassify_InvalidUrgencyTriggersFallback(t *testing.T) {
	bad := `{
		"category": "plumbing",
		"urgency": "catastrophic",
		"estimated_cost_range": "low",
		"vendor_required": true,
		"reasoning": "r",
		"confidence_score": 0.9
	}`
	client := &fakeChatClient{responses: []string{bad, bad, bad}}
	c := newTestClassifier(client)

	analysis := c.Classify(context.Background(), "leak", "", "")
	assert.True(t, analysis.Degraded)
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	resp := `{
		"category": "electrical",
		"urgency": "high",
		"estimated_cost_range": "medium",
		"vendor_required": true,
		"reasoning": "r",
		"confidence_score": 1.4
	}`
	c := newTestClassifier(&fakeChatClient{responses: []string{resp}})

	analysis := c.Classify(context.Background(), "sparking outlet", "", "")
	assert.Equal(t, 1.0, analysis.ConfidenceScore)
}

func TestParseAnalysis_RequiredFields(t *testing.T) {
	_, err := parseAnalysis(`{"category": "plumbing"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required fields")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"fenced", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced with language", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}

package ai

import "fmt"

// classificationSystemPrompt instructs the model to return a single JSON
// object matching the AIAnalysis shape. The category list must stay in sync
// with models.ValidCategories.
const classificationSystemPrompt = `You are an expert property maintenance operations manager.

Your task is to analyze a tenant maintenance request and determine:

1. category (plumbing, electrical, heating, appliance, structural, pest, damp, access, other)
2. urgency (low, medium, high, emergency)
3. estimated_cost_range (low < $200, medium $200-$800, high > $800)
4. vendor_required (true/false)
5. reasoning (clear operational explanation)
6. confidence_score (0.0 - 1.0)

Rules:
- Emergency issues include flooding, fire risk, gas smell, no heat in winter, major electrical hazard.
- Cosmetic issues (paint scratches, minor wear) do NOT require vendor immediately.
- If repair likely requires tools or technical expertise, vendor_required = true.
- If tenant can reasonably fix issue safely themselves, vendor_required = false.
- Always prioritize safety.

Return ONLY valid JSON.
No commentary.
No markdown.
No explanation outside JSON.`

// buildClassificationPrompt builds the user prompt with optional context
func buildClassificationPrompt(description, unitAddress, tenantName string) string {
	prompt := fmt.Sprintf("Analyze this maintenance request:\n\n%s", description)
	if unitAddress != "" {
		prompt += fmt.Sprintf("\n\nUnit: %s", unitAddress)
	}
	if tenantName != "" {
		prompt += fmt.Sprintf("\nTenant: %s", tenantName)
	}
	return prompt
}

// buildVendorMessagePrompt builds the contractor outreach prompt
func buildVendorMessagePrompt(vendorName, description, urgency, unitAddress, tenantName string) string {
	prompt := fmt.Sprintf(`Generate a professional, concise message to a contractor for a maintenance request.

Contractor: %s
Issue: %s
Urgency: %s
Property: %s
`, vendorName, description, urgency, unitAddress)

	if tenantName != "" {
		prompt += fmt.Sprintf("Tenant: %s\n", tenantName)
	}

	prompt += `
Write a brief, professional message requesting their service. Include:
- Greeting
- Issue description
- Urgency level
- Request for ETA
- Professional closing

Keep it under 100 words.`
	return prompt
}

// fallbackVendorMessage is the deterministic template used when message
// generation fails. Used silently; drafting is never allowed to fail a
// transition.
func fallbackVendorMessage(vendorName, description, urgency, unitAddress string) string {
	return fmt.Sprintf(`Hi %s,

We have a %s priority maintenance issue at %s that requires your expertise.

The tenant has reported: "%s"

Could you please provide an ETA for addressing this issue?

Thank you for your prompt attention to this matter.

Best regards,
Property Management`, vendorName, urgency, unitAddress, description)
}

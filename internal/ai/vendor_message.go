package ai

import (
	"context"

	"go.uber.org/zap"
)

// MessageDrafter drafts contractor outreach messages. A single LLM attempt
// is made; any failure falls back to the deterministic template without
// surfacing an error.
type MessageDrafter struct {
	client ChatClient
	logger *zap.Logger
}

// NewMessageDrafter creates a new message drafter
func NewMessageDrafter(client ChatClient, logger *zap.Logger) *MessageDrafter {
	return &MessageDrafter{client: client, logger: logger}
}

// DraftVendorMessage generates a professional outreach message for a vendor
func (d *MessageDrafter) DraftVendorMessage(ctx context.Context, vendorName, description, urgency, unitAddress, tenantName string) string {
	prompt := buildVendorMessagePrompt(vendorName, description, urgency, unitAddress, tenantName)

	content, err := d.client.Complete(ctx, "", prompt)
	if err != nil || content == "" {
		d.logger.Warn("Vendor message generation failed, using template",
			zap.Error(err))
		return fallbackVendorMessage(vendorName, description, urgency, unitAddress)
	}

	return content
}

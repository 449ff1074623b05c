package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDraftVendorMessage_UsesLLMResponse(t *testing.T) {
	client := &fakeChatClient{responses: []string{"Hello Joe, please fix the boiler."}}
	d := NewMessageDrafter(client, zap.NewNop())

	msg := d.DraftVendorMessage(context.Background(), "Joe", "boiler not heating", "high", "Flat 2, 10 High St", "Sam")

	assert.Equal(t, "Hello Joe, please fix the boiler.", msg)
	assert.Equal(t, 1, client.calls)
}

func TestDraftVendorMessage_FallbackOnError(t *testing.T) {
	client := &fakeChatClient{
		responses: []string{""},
		errs:      []error{errors.New("timeout")},
	}
	d := NewMessageDrafter(client, zap.NewNop())

	msg := d.DraftVendorMessage(context.Background(), "Joe", "boiler not heating", "high", "Flat 2, 10 High St", "")

	assert.Contains(t, msg, "Hi Joe")
	assert.Contains(t, msg, "boiler not heating")
	assert.Contains(t, msg, "high priority")
	assert.Contains(t, msg, "Flat 2, 10 High St")
	// Single attempt only, no retry
	assert.Equal(t, 1, client.calls)
}

func TestDraftVendorMessage_FallbackOnEmptyResponse(t *testing.T) {
	client := &fakeChatClient{responses: []string{""}}
	d := NewMessageDrafter(client, zap.NewNop())

	msg := d.DraftVendorMessage(context.Background(), "Ace Plumbing", "leak", "emergency", "12 Elm Rd", "")
	assert.Contains(t, msg, "Ace Plumbing")
}

package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTimeoutTestClient(t *testing.T, upstream http.HandlerFunc, timeout time.Duration) *OpenAIClient {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       "gpt-4",
		temperature: 0.3,
		maxTokens:   100,
		timeout:     timeout,
		logger:      zap.NewNop(),
	}
}

func TestComplete_TimeoutBoundsHungUpstream(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	client := newTimeoutTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), "", "hello")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestComplete_ZeroTimeoutUsesCallerContext(t *testing.T) {
	client := newTimeoutTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}, 0)

	out, err := client.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

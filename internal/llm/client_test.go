package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwrite/propwrite/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New("test-key",
		WithBaseURL(srv.URL),
		WithTimeout(2*time.Second),
		WithRatePerMinute(6000))
}

func textResponse(text string) []byte {
	b, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return b
}

func TestComplete_ReturnsText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Write(textResponse("HEADLINE: Two bedroom flat"))
	})

	out, err := c.Complete(context.Background(), Request{
		Model:     "claude-sonnet-4",
		MaxTokens: 1000,
		Prompt:    "describe",
	})
	require.NoError(t, err)
	assert.Equal(t, "HEADLINE: Two bedroom flat", out)
}

func TestComplete_ImageBlockPrecedesText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		blocks := req.Messages[0].Content
		require.Len(t, blocks, 2)
		assert.Equal(t, "image", blocks[0].Type)
		assert.Equal(t, "image/jpeg", blocks[0].Source.MediaType)
		assert.Equal(t, "text", blocks[1].Type)
		w.Write(textResponse("{}"))
	})

	_, err := c.Complete(context.Background(), Request{
		Model:  "claude-haiku-4-5",
		Prompt: "classify this room",
		Image:  &ImageBlock{MediaType: "image/jpeg", Data: "aGVsbG8="},
	})
	require.NoError(t, err)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(textResponse("recovered"))
	})

	out, err := c.Complete(context.Background(), Request{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad model"}}`))
	})

	_, err := c.Complete(context.Background(), Request{Model: "nope", Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrProviderUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_Unconfigured(t *testing.T) {
	c := New("")
	_, err := c.Complete(context.Background(), Request{Model: "m", Prompt: "p"})
	assert.ErrorIs(t, err, core.ErrProviderUnavailable)
}

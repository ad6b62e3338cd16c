package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeService(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, "test-key", "test-model")
}

func TestComplete(t *testing.T) {
	c := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/openai/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		assert.NotContains(t, req, "response_format")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  hello there  "}},
			},
		})
	})

	out, err := c.Complete(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
}

func TestCompleteJSONSetsResponseFormat(t *testing.T) {
	c := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		format, ok := req["response_format"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "json_object", format["type"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"age": 30}`}},
			},
		})
	})

	raw, err := c.CompleteJSON(context.Background(), "extract")
	require.NoError(t, err)
	assert.JSONEq(t, `{"age": 30}`, string(raw))
}

func TestCompleteErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		c := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := c.Complete(context.Background(), "p")
		assert.ErrorContains(t, err, "429")
	})

	t.Run("api error payload", func(t *testing.T) {
		c := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"message": "model overloaded"},
			})
		})
		_, err := c.Complete(context.Background(), "p")
		assert.ErrorContains(t, err, "model overloaded")
	})

	t.Run("no choices", func(t *testing.T) {
		c := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		})
		_, err := c.Complete(context.Background(), "p")
		assert.ErrorContains(t, err, "no choices")
	})
}

func TestHealthPing(t *testing.T) {
	healthy := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/openai/v1/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, healthy.HealthPing(context.Background()))

	down := newFakeService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, down.HealthPing(context.Background()))
}

package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoachServiceUnconfigured(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	coach := NewCoachService()

	require.False(t, coach.Configured())
	_, err := coach.Coach("Shipped v1")
	require.Error(t, err)
}

func TestCoachServiceSuccess(t *testing.T) {
	var gotAuth, gotRequestID string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Lead with the outcome."}},
			},
		})
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL)
	coach := NewCoachService()

	text, err := coach.Coach("Shipped v1")
	require.NoError(t, err)
	require.Equal(t, "Lead with the outcome.", text)

	require.Equal(t, "Bearer test-key", gotAuth)
	require.NotEmpty(t, gotRequestID)
	require.Equal(t, defaultCoachModel, gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	require.Contains(t, gotBody.Messages[0].Content, "Shipped v1")
}

func TestCoachServiceAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited"},
		})
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL)
	coach := NewCoachService()

	_, err := coach.Coach("Shipped v1")
	require.ErrorContains(t, err, "rate limited")
}

func TestCoachServiceEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL)
	coach := NewCoachService()

	_, err := coach.Coach("Shipped v1")
	require.ErrorContains(t, err, "no response")
}

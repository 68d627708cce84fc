package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPWebhookClient_Call(t *testing.T) {
	t.Run("posts JSON payload and parses the response", func(t *testing.T) {
		var received map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "secret-token", r.Header.Get("X-Api-Key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"received":true}`))
		}))
		defer server.Close()

		client := NewHTTPWebhookClient()
		resp, err := client.Call(context.Background(), &domain.WebhookRequest{
			URL:     server.URL,
			Headers: map[string]string{"X-Api-Key": "secret-token"},
			Payload: map[string]any{"enrollment_id": "enr-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, resp.Body["received"])
		assert.Equal(t, "enr-1", received["enrollment_id"])
	})

	t.Run("4xx is a permanent failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		client := NewHTTPWebhookClient()
		resp, err := client.Call(context.Background(), &domain.WebhookRequest{URL: server.URL})
		require.Error(t, err)
		assert.True(t, domain.IsPermanent(err))
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("5xx is retryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewHTTPWebhookClient()
		_, err := client.Call(context.Background(), &domain.WebhookRequest{URL: server.URL})
		require.Error(t, err)
		assert.False(t, domain.IsPermanent(err))
	})

	t.Run("connection refused is retryable", func(t *testing.T) {
		client := NewHTTPWebhookClient()
		_, err := client.Call(context.Background(), &domain.WebhookRequest{
			URL: "http://127.0.0.1:1/hook",
		})
		require.Error(t, err)
		assert.False(t, domain.IsPermanent(err))
	})

	t.Run("custom method is honored", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewHTTPWebhookClient()
		resp, err := client.Call(context.Background(), &domain.WebhookRequest{
			URL:    server.URL,
			Method: "put",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

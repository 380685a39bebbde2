package smsgateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/braddown/kudosity-platform-sub004/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(serverURL string) Gateway {
	return NewHTTPGateway(&config.Config{
		Gateway: config.GatewayConfig{
			BaseURL: serverURL,
			APIKey:  "test-key",
		},
	})
}

func TestHTTPGatewaySendSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "61400000001", body["to"])
		assert.Equal(t, "hello", body["body"])
		assert.Equal(t, "KUDOS", body["from"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"message_id":  "MSG-1",
			"message_ref": "ref-1",
			"segments":    1,
			"cost":        0.05,
		})
	}))
	defer server.Close()

	receipt, err := newTestGateway(server.URL).Send(context.Background(), "61400000001", "hello", "KUDOS")
	require.NoError(t, err)
	assert.Equal(t, "MSG-1", receipt.MessageID)
	assert.Equal(t, "ref-1", receipt.MessageRef)
	assert.Equal(t, 1, receipt.Segments)
	assert.Equal(t, 0.05, receipt.Cost)
}

func TestHTTPGatewaySendThrottled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).Send(context.Background(), "61400000001", "hello", "KUDOS")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestHTTPGatewaySendClientErrorNotRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid recipient", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).Send(context.Background(), "bad", "hello", "KUDOS")
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestHTTPGatewaySendMissingMessageID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"segments": 1})
	}))
	defer server.Close()

	_, err := newTestGateway(server.URL).Send(context.Background(), "61400000001", "hello", "KUDOS")
	require.ErrorIs(t, err, ErrNoMessageID)
	assert.False(t, IsRetryable(err))
}

func TestMockGatewaySend(t *testing.T) {
	receipt, err := NewMockGateway("TEST").Send(context.Background(), "61400000001", "hello", "KUDOS")
	require.NoError(t, err)
	assert.Contains(t, receipt.MessageID, "TEST-MOCK-MSG-")
}

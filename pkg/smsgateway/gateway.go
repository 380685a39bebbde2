package smsgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/braddown/kudosity-platform-sub004/internal/config"
)

// ErrNoMessageID is returned when the gateway accepts a send but the
// response carries no message identifier. Without one the send can never be
// reconciled, so it is treated as a terminal failure.
var ErrNoMessageID = errors.New("gateway response missing message id")

// SendReceipt is the provider's acknowledgment of one accepted send.
type SendReceipt struct {
	MessageID  string
	MessageRef string
	Segments   int
	Cost       float64
}

// Gateway represents an SMS gateway interface
type Gateway interface {
	Send(ctx context.Context, msisdn, body, sender string) (*SendReceipt, error)
}

// APIError is a non-success response from the gateway.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the failure is a throttle or transient server
// condition worth retrying.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// IsRetryable reports whether err is a retryable gateway condition.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}

// HTTPGateway sends messages through the provider's REST API.
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(cfg *config.Config) Gateway {
	return &HTTPGateway{
		baseURL: cfg.Gateway.BaseURL,
		apiKey:  cfg.Gateway.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
	From string `json:"from,omitempty"`
}

type sendResponse struct {
	MessageID  string  `json:"message_id"`
	MessageRef string  `json:"message_ref"`
	Segments   int     `json:"segments"`
	Cost       float64 `json:"cost"`
}

// Send posts one message to the gateway and returns its receipt
func (g *HTTPGateway) Send(ctx context.Context, msisdn, body, sender string) (*SendReceipt, error) {
	jsonBody, err := json.Marshal(sendRequest{To: msisdn, Body: body, From: sender})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var response sendResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if response.MessageID == "" {
		return nil, ErrNoMessageID
	}

	return &SendReceipt{
		MessageID:  response.MessageID,
		MessageRef: response.MessageRef,
		Segments:   response.Segments,
		Cost:       response.Cost,
	}, nil
}

// MockGateway represents a mock SMS gateway for local runs and tests
type MockGateway struct {
	Name string
}

// NewMockGateway creates a new Mock SMS gateway
func NewMockGateway(name string) Gateway {
	return &MockGateway{Name: name}
}

// Send simulates an accepted send with a synthetic message id
func (g *MockGateway) Send(ctx context.Context, msisdn, body, sender string) (*SendReceipt, error) {
	msgID := fmt.Sprintf("%s-MOCK-MSG-%d", g.Name, time.Now().UnixNano())
	return &SendReceipt{
		MessageID: msgID,
		Segments:  1,
		Cost:      0,
	}, nil
}

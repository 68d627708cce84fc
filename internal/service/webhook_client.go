package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
)

const defaultWebhookTimeout = 30 * time.Second

// HTTPWebhookClient implements domain.WebhookClient over net/http. A 4xx
// response is a permanent failure (the endpoint rejected the payload and will
// keep rejecting it); 5xx and transport errors are retryable.
type HTTPWebhookClient struct {
	client *http.Client
}

// NewHTTPWebhookClient creates a new HTTPWebhookClient
func NewHTTPWebhookClient() *HTTPWebhookClient {
	return &HTTPWebhookClient{
		client: &http.Client{Timeout: defaultWebhookTimeout},
	}
}

// Call performs the webhook request
func (c *HTTPWebhookClient) Call(ctx context.Context, req *domain.WebhookRequest) (*domain.WebhookResponse, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodPost
	}

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, domain.NewPermanentError("failed to marshal webhook payload", err)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewPermanentError("failed to build webhook request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	result := &domain.WebhookResponse{StatusCode: resp.StatusCode}
	if len(respBody) > 0 {
		// best effort, webhook endpoints are not required to return JSON
		_ = json.Unmarshal(respBody, &result.Body)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return result, nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return result, domain.NewPermanentError(
			fmt.Sprintf("webhook endpoint rejected request with status %d", resp.StatusCode), nil)
	}
	return result, fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
}

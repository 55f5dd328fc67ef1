package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookNotifier posts notification events to an HTTP endpoint. The auth
// manager fires it best-effort after registration.
type WebhookNotifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewWebhookNotifier builds a notifier for the given endpoint.
func NewWebhookNotifier(endpoint, apiKey string, client *http.Client) (*WebhookNotifier, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("backend: notifier endpoint is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &WebhookNotifier{endpoint: endpoint, apiKey: apiKey, client: client}, nil
}

// Notify posts the event payload. Non-2xx responses are returned as errors;
// callers decide whether the failure matters.
func (n *WebhookNotifier) Notify(ctx context.Context, event string, payload map[string]any) error {
	body, err := json.Marshal(map[string]any{"event": event, "payload": payload})
	if err != nil {
		return fmt.Errorf("backend: encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backend: build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.apiKey)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: notification request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("backend: notification rejected with status %d", resp.StatusCode)
	}
	return nil
}

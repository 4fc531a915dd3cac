package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

// WebhookBot hands conversations to a hosted bot platform over HTTP.
type WebhookBot struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewWebhookBot(baseURL, token string) *WebhookBot {
	return &WebhookBot{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *WebhookBot) Name() string { return "webhook" }

func (b *WebhookBot) Capabilities() []providers.Capability {
	return []providers.Capability{providers.CapabilityChatbot}
}

func (b *WebhookBot) RouteToBot(ctx context.Context, req providers.RouteRequest) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := b.do(ctx, http.MethodPost, "/sessions", req, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("bot platform returned no session_id")
	}
	return out.SessionID, nil
}

func (b *WebhookBot) DisconnectBot(ctx context.Context, sessionID string) error {
	return b.do(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(sessionID), nil, nil)
}

func (b *WebhookBot) Ping(ctx context.Context) error {
	return b.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (b *WebhookBot) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bot platform error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

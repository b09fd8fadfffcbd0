package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Webhook error bodies are truncated to keep alert logs bounded.
const webhookErrorBodyLimit = 200

// WebhookChannel POSTs a JSON payload to a caller-supplied URL, optionally
// signing it with a shared secret header.
type WebhookChannel struct {
	secret string
	client *http.Client
	logger *slog.Logger
}

// NewWebhookChannel creates the live webhook channel.
func NewWebhookChannel(cfg Config, logger *slog.Logger) *WebhookChannel {
	return &WebhookChannel{
		secret: cfg.WebhookSecret,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger.With("channel", ChannelWebhook),
	}
}

func (c *WebhookChannel) Name() string {
	return ChannelWebhook
}

func webhookSuccess(status int) bool {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return true
	default:
		return false
	}
}

// Send posts the message payload to the recipient URL. Anything outside
// 200/201/202/204 is a failure with status and truncated body captured.
func (c *WebhookChannel) Send(ctx context.Context, recipient string, msg Message) Result {
	payload := msg.Payload
	if payload == nil {
		payload = map[string]any{
			"message":   msg.Text,
			"recipient": recipient,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failureResult(ChannelWebhook, recipient, fmt.Sprintf("failed to encode payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recipient, bytes.NewReader(body))
	if err != nil {
		return failureResult(ChannelWebhook, recipient, fmt.Sprintf("failed to build request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")

	if c.secret != "" {
		req.Header.Set("X-Webhook-Secret", c.secret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return failureResult(ChannelWebhook, recipient, fmt.Sprintf("request failed: %v", err))
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if !webhookSuccess(resp.StatusCode) {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, webhookErrorBodyLimit))

		return failureResult(ChannelWebhook, recipient, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody)))
	}

	return successResult(ChannelWebhook, recipient, "webhook_"+uuid.New().String())
}

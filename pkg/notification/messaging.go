package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMessagingBaseURL = "https://graph.facebook.com"
	requestTimeout          = 30 * time.Second
)

// MessagingChannel delivers alerts through a WhatsApp-style business
// messaging API: POST to the provider with bearer auth, either a free-text
// message (requires an open conversation window) or a named pre-approved
// template.
type MessagingChannel struct {
	phoneID    string
	token      string
	apiVersion string
	baseURL    string
	client     *http.Client
	logger     *slog.Logger
}

// NewMessagingChannel creates the live messaging channel.
func NewMessagingChannel(cfg Config, logger *slog.Logger) *MessagingChannel {
	baseURL := cfg.MessagingBaseURL
	if baseURL == "" {
		baseURL = defaultMessagingBaseURL
	}

	return &MessagingChannel{
		phoneID:    cfg.MessagingPhoneID,
		token:      cfg.MessagingToken,
		apiVersion: cfg.MessagingAPIVersion,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: requestTimeout},
		logger:     logger.With("channel", ChannelWhatsApp),
	}
}

func (c *MessagingChannel) Name() string {
	return ChannelWhatsApp
}

// normalizePhone strips "+", spaces and dashes before transmission.
func normalizePhone(phone string) string {
	replacer := strings.NewReplacer("+", "", " ", "", "-", "")

	return replacer.Replace(phone)
}

type messagingResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Send posts one message to the provider. Non-2xx responses produce a failed
// result carrying the provider's error text.
func (c *MessagingChannel) Send(ctx context.Context, recipient string, msg Message) Result {
	var payload map[string]any

	if msg.TemplateName != "" {
		payload = map[string]any{
			"messaging_product": "whatsapp",
			"to":                normalizePhone(recipient),
			"type":              "template",
			"template": map[string]any{
				"name":     msg.TemplateName,
				"language": map[string]any{"code": "en"},
			},
		}
	} else {
		payload = map[string]any{
			"messaging_product": "whatsapp",
			"recipient_type":    "individual",
			"to":                normalizePhone(recipient),
			"type":              "text",
			"text":              map[string]any{"body": msg.Text},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failureResult(ChannelWhatsApp, recipient, fmt.Sprintf("failed to encode payload: %v", err))
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failureResult(ChannelWhatsApp, recipient, fmt.Sprintf("failed to build request: %v", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return failureResult(ChannelWhatsApp, recipient, fmt.Sprintf("request failed: %v", err))
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failureResult(ChannelWhatsApp, recipient, fmt.Sprintf("failed to read response: %v", err))
	}

	var parsed messagingResponse

	if err := json.Unmarshal(respBody, &parsed); err != nil {
		c.logger.WarnContext(ctx, "Failed to parse provider response", "error", err)
	}

	if resp.StatusCode != http.StatusOK {
		errText := parsed.Error.Message
		if errText == "" {
			errText = "unknown error"
		}

		return failureResult(ChannelWhatsApp, recipient, fmt.Sprintf("API error: %s", errText))
	}

	messageID := ""
	if len(parsed.Messages) > 0 {
		messageID = parsed.Messages[0].ID
	}

	return successResult(ChannelWhatsApp, recipient, messageID)
}

// Package notification provides uniform send-and-report alert delivery across
// heterogeneous channels: a WhatsApp-style business messaging API, SMTP email,
// caller-supplied webhooks and an in-app system channel.
package notification

import "time"

// Result reports one delivery attempt. Delivery failures are represented
// here, never as errors: a channel Send never fails with an exception-style
// error, it returns Success=false with the cause captured.
type Result struct {
	Success   bool      `json:"success"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	MessageID string    `json:"message_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func successResult(channel, recipient, messageID string) Result {
	return Result{
		Success:   true,
		Channel:   channel,
		Recipient: recipient,
		MessageID: messageID,
		Timestamp: time.Now().UTC(),
	}
}

func failureResult(channel, recipient, errorMessage string) Result {
	return Result{
		Success:   false,
		Channel:   channel,
		Recipient: recipient,
		Error:     errorMessage,
		Timestamp: time.Now().UTC(),
	}
}

// Message is the channel-agnostic content of one alert. Channels pick the
// parts they can carry: messaging sends Text (or the named pre-approved
// template), email sends Subject/Text/HTML, webhooks send Payload.
type Message struct {
	Subject string
	Text    string
	HTML    string

	// TemplateName selects a pre-approved messaging template for
	// business-initiated conversations outside the open-conversation window.
	TemplateName string

	// Payload is the webhook JSON body. When nil the webhook channel falls
	// back to a minimal {message, recipient} object.
	Payload map[string]any
}

package notification

import (
	"os"
	"strconv"
)

const defaultMessagingAPIVersion = "v18.0"

// Config holds channel credentials. A channel without credentials runs in
// mock mode: sends still produce well-formed success results so the engine's
// control flow is identical in demo and production.
type Config struct {
	// WhatsApp-style business messaging API.
	MessagingPhoneID    string
	MessagingToken      string
	MessagingAPIVersion string
	MessagingBaseURL    string // Overridable for tests; empty means the provider default

	// SMTP submission.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string

	// Webhook shared secret, sent as X-Webhook-Secret when set.
	WebhookSecret string

	// MockMode forces every channel into mock delivery regardless of
	// credentials.
	MockMode bool
}

// ConfigFromEnv reads channel credentials from the environment.
func ConfigFromEnv() Config {
	port := 587
	if v := os.Getenv("VIGIL_SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			port = parsed
		}
	}

	apiVersion := os.Getenv("VIGIL_MESSAGING_API_VERSION")
	if apiVersion == "" {
		apiVersion = defaultMessagingAPIVersion
	}

	fromName := os.Getenv("VIGIL_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "Vigil Alert System"
	}

	return Config{
		MessagingPhoneID:    os.Getenv("VIGIL_MESSAGING_PHONE_ID"),
		MessagingToken:      os.Getenv("VIGIL_MESSAGING_TOKEN"),
		MessagingAPIVersion: apiVersion,
		SMTPHost:            os.Getenv("VIGIL_SMTP_HOST"),
		SMTPPort:            port,
		SMTPUsername:        os.Getenv("VIGIL_SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("VIGIL_SMTP_PASSWORD"),
		FromName:            fromName,
		WebhookSecret:       os.Getenv("VIGIL_WEBHOOK_SECRET"),
		MockMode:            os.Getenv("VIGIL_NOTIFICATION_MOCK_MODE") != "false",
	}
}

// MessagingConfigured reports whether the messaging channel has credentials.
func (c Config) MessagingConfigured() bool {
	return c.MessagingPhoneID != "" && c.MessagingToken != ""
}

// EmailConfigured reports whether the email channel has credentials.
func (c Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

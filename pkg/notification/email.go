package notification

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const smtpTimeout = 30 * time.Second

// EmailChannel delivers alerts via authenticated SMTP submission with
// STARTTLS. The blocking SMTP exchange runs on its own goroutine gated by a
// timeout so a slow server cannot stall the tick loop.
type EmailChannel struct {
	host     string
	port     int
	username string
	password string
	fromName string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewEmailChannel creates the live email channel.
func NewEmailChannel(cfg Config, logger *slog.Logger) *EmailChannel {
	return &EmailChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		fromName: cfg.FromName,
		timeout:  smtpTimeout,
		logger:   logger.With("channel", ChannelEmail),
	}
}

func (c *EmailChannel) Name() string {
	return ChannelEmail
}

// Send submits one multi-part message (plain text plus optional HTML).
func (c *EmailChannel) Send(ctx context.Context, recipient string, msg Message) Result {
	raw := c.buildMIME(recipient, msg)

	done := make(chan error, 1)

	go func() {
		done <- c.submit(recipient, raw)
	}()

	select {
	case err := <-done:
		if err != nil {
			return failureResult(ChannelEmail, recipient, err.Error())
		}

		return successResult(ChannelEmail, recipient, "email_"+uuid.New().String())
	case <-time.After(c.timeout):
		return failureResult(ChannelEmail, recipient, fmt.Sprintf("smtp send timed out after %s", c.timeout))
	case <-ctx.Done():
		// The in-flight SMTP exchange is left to finish on its own; partial
		// delivery to an external server cannot be rolled back.
		return failureResult(ChannelEmail, recipient, ctx.Err().Error())
	}
}

func (c *EmailChannel) buildMIME(recipient string, msg Message) []byte {
	boundary := "vigil-" + uuid.New().String()

	var b strings.Builder

	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", c.fromName), c.username)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	if msg.HTML != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(msg.HTML)
		b.WriteString("\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String())
}

// submit performs the blocking SMTP exchange: STARTTLS then authenticated
// submission.
func (c *EmailChannel) submit(recipient string, raw []byte) error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	auth := smtp.PlainAuth("", c.username, c.password, c.host)

	err := smtp.SendMail(addr, auth, c.username, []string{recipient}, raw)
	if err != nil {
		return fmt.Errorf("smtp submission failed: %w", err)
	}

	return nil
}

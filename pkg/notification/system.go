package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// SystemChannel is the in-app acknowledgement channel: no external I/O,
// always succeeds. Used by "system alert" action nodes.
type SystemChannel struct {
	logger *slog.Logger
}

// NewSystemChannel creates the system channel.
func NewSystemChannel(logger *slog.Logger) *SystemChannel {
	return &SystemChannel{logger: logger.With("channel", ChannelSystemAlert)}
}

func (c *SystemChannel) Name() string {
	return ChannelSystemAlert
}

func (c *SystemChannel) Send(ctx context.Context, recipient string, msg Message) Result {
	if recipient == "" {
		recipient = "system"
	}

	c.logger.InfoContext(ctx, "System alert", "subject", msg.Subject)

	return successResult(ChannelSystemAlert, recipient, "system_"+uuid.New().String())
}

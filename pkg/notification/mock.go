package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// MockChannel stands in for a live channel when no credentials are
// configured. Every send produces a well-formed success result with a
// synthetic message id, which keeps the engine's control flow identical in
// demo and production. This is a first-class operating mode, not a test shim.
type MockChannel struct {
	name   string
	logger *slog.Logger
}

// NewMockChannel creates a mock implementation of the named channel.
func NewMockChannel(name string, logger *slog.Logger) *MockChannel {
	return &MockChannel{
		name:   name,
		logger: logger.With("channel", name, "mode", "mock"),
	}
}

func (c *MockChannel) Name() string {
	return c.name
}

func (c *MockChannel) Send(ctx context.Context, recipient string, msg Message) Result {
	c.logger.InfoContext(ctx, "Mock delivery", "recipient", recipient, "subject", msg.Subject)

	return successResult(c.name, recipient, "mock_"+c.name+"_"+uuid.New().String())
}

package notification

import (
	"context"
	"fmt"
	"log/slog"
)

// Channel names routable by the dispatcher.
const (
	ChannelWhatsApp    = "whatsapp"
	ChannelEmail       = "email"
	ChannelWebhook     = "webhook"
	ChannelSystemAlert = "system_alert"
)

// Channel is one notification transport. Implementations never return
// delivery failures as errors; failures are captured in the Result.
type Channel interface {
	Name() string
	Send(ctx context.Context, recipient string, msg Message) Result
}

// Dispatcher routes alerts to channels by name. Live or mock implementations
// are selected per channel at construction time; callers cannot tell which is
// active.
type Dispatcher struct {
	channels map[string]Channel
	logger   *slog.Logger
}

// NewDispatcher builds a dispatcher from config. Channels without credentials
// (or all channels, in mock mode) get mock implementations.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	logger = logger.With("module", "notification_dispatcher")

	d := &Dispatcher{
		channels: make(map[string]Channel),
		logger:   logger,
	}

	if !cfg.MockMode && cfg.MessagingConfigured() {
		d.register(NewMessagingChannel(cfg, logger))
	} else {
		d.register(NewMockChannel(ChannelWhatsApp, logger))
	}

	if !cfg.MockMode && cfg.EmailConfigured() {
		d.register(NewEmailChannel(cfg, logger))
	} else {
		d.register(NewMockChannel(ChannelEmail, logger))
	}

	if !cfg.MockMode {
		d.register(NewWebhookChannel(cfg, logger))
	} else {
		d.register(NewMockChannel(ChannelWebhook, logger))
	}

	// The system channel has no external I/O; it is identical in both modes.
	d.register(NewSystemChannel(logger))

	return d
}

// NewDispatcherWithChannels builds a dispatcher over an explicit channel set.
func NewDispatcherWithChannels(logger *slog.Logger, channels ...Channel) *Dispatcher {
	d := &Dispatcher{
		channels: make(map[string]Channel, len(channels)),
		logger:   logger.With("module", "notification_dispatcher"),
	}

	for _, ch := range channels {
		d.register(ch)
	}

	return d
}

func (d *Dispatcher) register(ch Channel) {
	d.channels[ch.Name()] = ch
}

// Channel returns the registered channel with the given name.
func (d *Dispatcher) Channel(name string) (Channel, bool) {
	ch, ok := d.channels[name]

	return ch, ok
}

// Send dispatches through the named channel. An unknown channel name or an
// empty recipient on a channel that requires one produces a failed result
// without attempting I/O; this never panics.
func (d *Dispatcher) Send(ctx context.Context, channelName, recipient string, msg Message) Result {
	ch, ok := d.channels[channelName]
	if !ok {
		d.logger.WarnContext(ctx, "Unknown notification channel", "channel", channelName)

		return failureResult(channelName, recipient, fmt.Sprintf("unknown channel: %s", channelName))
	}

	if recipient == "" && channelName != ChannelSystemAlert {
		return failureResult(channelName, recipient, "recipient is required")
	}

	result := ch.Send(ctx, recipient, msg)

	if result.Success {
		d.logger.DebugContext(ctx, "Notification sent",
			"channel", channelName, "recipient", recipient, "message_id", result.MessageID)
	} else {
		d.logger.WarnContext(ctx, "Notification failed",
			"channel", channelName, "recipient", recipient, "error", result.Error)
	}

	return result
}

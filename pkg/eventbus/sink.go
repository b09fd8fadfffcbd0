package eventbus

import (
	"context"
	"log/slog"

	"github.com/nexuslab/vigil/pkg/events"
)

// VisualAlertNotifier forwards visual alerts onto the event bus so display
// subscribers can highlight the equipment. Publish failures are logged, never
// surfaced; the engine treats the sink as fire-and-forget.
type VisualAlertNotifier struct {
	bus    EventPublisher
	logger *slog.Logger
}

func NewVisualAlertNotifier(bus EventPublisher, logger *slog.Logger) *VisualAlertNotifier {
	return &VisualAlertNotifier{
		bus:    bus,
		logger: logger.With("module", "visual_alert_notifier"),
	}
}

func (n *VisualAlertNotifier) Notify(ctx context.Context, equipmentID string) {
	event := events.VisualAlert{
		BaseEvent:   events.NewBaseEvent(events.VisualAlertEvent, ""),
		EquipmentID: equipmentID,
	}

	if err := n.bus.Publish(ctx, equipmentID, event); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish visual alert", "equipment_id", equipmentID, "error", err)
	}
}

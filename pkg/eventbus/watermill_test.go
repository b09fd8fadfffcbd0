package eventbus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslab/vigil/pkg/events"
	"github.com/nexuslab/vigil/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGoChannelEventBusRoundTrip(t *testing.T) {
	ctx := context.Background()
	bus := NewGoChannelEventBus(testLogger())

	defer func() {
		require.NoError(t, bus.Close())
	}()

	received := make(chan *events.TriggerFired, 1)

	require.NoError(t, bus.Handle(events.TriggerFiredEvent, func(_ context.Context, event any) error {
		fired, ok := event.(*events.TriggerFired)
		require.True(t, ok)
		received <- fired

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	fired := events.TriggerFired{
		BaseEvent:     events.NewBaseEvent(events.TriggerFiredEvent, "wf-1"),
		TriggerNodeID: "n1",
		EquipmentID:   "Centrifuge_01",
		SensorType:    "temp",
		Value:         40,
		Threshold:     35,
		Severity:      models.SeverityWarning,
	}
	require.NoError(t, bus.Publish(ctx, "wf-1", fired))

	select {
	case got := <-received:
		assert.Equal(t, "wf-1", got.WorkflowID)
		assert.Equal(t, "n1", got.TriggerNodeID)
		assert.InDelta(t, 40.0, got.Value, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestVisualAlertNotifierPublishes(t *testing.T) {
	ctx := context.Background()
	bus := NewGoChannelEventBus(testLogger())

	defer func() {
		require.NoError(t, bus.Close())
	}()

	received := make(chan *events.VisualAlert, 1)

	require.NoError(t, bus.Handle(events.VisualAlertEvent, func(_ context.Context, event any) error {
		alert, ok := event.(*events.VisualAlert)
		require.True(t, ok)
		received <- alert

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	NewVisualAlertNotifier(bus, testLogger()).Notify(ctx, "centrifuge-3d-01")

	select {
	case got := <-received:
		assert.Equal(t, "centrifuge-3d-01", got.EquipmentID)
	case <-time.After(2 * time.Second):
		t.Fatal("visual alert was not delivered")
	}
}

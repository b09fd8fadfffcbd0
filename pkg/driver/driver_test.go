package driver

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslab/vigil/pkg/models"
)

type staticSource struct {
	snapshot models.SensorSnapshot
}

func (s *staticSource) Snapshot(_ context.Context) models.SensorSnapshot {
	return s.snapshot
}

type countingHandler struct {
	mu    sync.Mutex
	ticks int
	seen  []models.SensorSnapshot
	block chan struct{}
}

func (h *countingHandler) OnTick(_ context.Context, snapshot models.SensorSnapshot) []models.DispatchResult {
	h.mu.Lock()
	h.ticks++
	h.seen = append(h.seen, snapshot)
	h.mu.Unlock()

	if h.block != nil {
		<-h.block
	}

	return nil
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.ticks
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTickDriverInvokesHandlerWithSnapshot(t *testing.T) {
	source := &staticSource{snapshot: models.SensorSnapshot{"Centrifuge_01.temp": 40.0}}
	handler := &countingHandler{}
	driver := NewTickDriver(10*time.Millisecond, source, handler, testLogger())

	go driver.Start(context.Background())

	require.Eventually(t, func() bool {
		return handler.count() >= 2
	}, time.Second, 5*time.Millisecond)

	driver.Stop()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.InDelta(t, 40.0, handler.seen[0]["Centrifuge_01.temp"], 1e-9)
}

func TestTickDriverSkipsWhileBusy(t *testing.T) {
	source := &staticSource{snapshot: models.SensorSnapshot{}}
	handler := &countingHandler{block: make(chan struct{})}
	driver := NewTickDriver(5*time.Millisecond, source, handler, testLogger())

	go driver.Start(context.Background())

	require.Eventually(t, func() bool {
		return handler.count() == 1
	}, time.Second, time.Millisecond)

	// Several intervals elapse while the first tick blocks; none may start.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, handler.count())

	close(handler.block)
	driver.Stop()
}

func TestTickDriverStopWaitsForInFlightTick(t *testing.T) {
	var finished atomic.Bool

	source := &staticSource{snapshot: models.SensorSnapshot{}}
	handler := &countingHandler{block: make(chan struct{})}
	driver := NewTickDriver(5*time.Millisecond, source, handler, testLogger())

	go driver.Start(context.Background())

	require.Eventually(t, func() bool {
		return handler.count() == 1
	}, time.Second, time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
		close(handler.block)
	}()

	driver.Stop()

	assert.True(t, finished.Load(), "Stop returned before the in-flight tick completed")
	assert.Equal(t, 1, handler.count())
}

func TestBatchSchedulerRejectsInvalidCron(t *testing.T) {
	scheduler := NewBatchScheduler(&staticSource{}, nil, testLogger())

	err := scheduler.Add("not a cron", "wf-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}

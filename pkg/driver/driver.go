// Package driver schedules engine ticks: it pulls a fresh sensor snapshot on
// a fixed interval and hands it to the engine.
package driver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nexuslab/vigil/pkg/models"
)

// SensorSource supplies the per-tick snapshot. Keys must follow the
// "{equipment_id}.{sensor_type}" convention.
type SensorSource interface {
	Snapshot(ctx context.Context) models.SensorSnapshot
}

// TickHandler is what the driver drives; the engine implements it.
type TickHandler interface {
	OnTick(ctx context.Context, snapshot models.SensorSnapshot) []models.DispatchResult
}

// TickDriver invokes the handler at a fixed interval. A tick that is still
// running when the next interval elapses causes that interval to be skipped,
// never queued. Stop lets the in-flight tick finish; dispatches are
// fire-and-complete and are not cancelled mid-flight.
type TickDriver struct {
	interval time.Duration
	source   SensorSource
	handler  TickHandler
	logger   *slog.Logger

	busy    atomic.Bool
	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func NewTickDriver(interval time.Duration, source SensorSource, handler TickHandler, logger *slog.Logger) *TickDriver {
	return &TickDriver{
		interval: interval,
		source:   source,
		handler:  handler,
		logger:   logger.With("module", "tick_driver", "interval", interval),
		stopped:  make(chan struct{}),
	}
}

// Start runs the tick loop until Stop is called or ctx is cancelled. It
// blocks; run it in its own goroutine when the caller has other work.
func (d *TickDriver) Start(ctx context.Context) {
	d.logger.InfoContext(ctx, "Starting tick driver")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.InfoContext(ctx, "Tick driver context cancelled")
			d.wg.Wait()

			return
		case <-d.stopped:
			d.wg.Wait()

			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *TickDriver) tick(ctx context.Context) {
	if !d.busy.CompareAndSwap(false, true) {
		d.logger.WarnContext(ctx, "Previous tick still running, skipping")

		return
	}

	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		defer d.busy.Store(false)

		snapshot := d.source.Snapshot(ctx)
		results := d.handler.OnTick(ctx, snapshot)

		if len(results) > 0 {
			d.logger.InfoContext(ctx, "Tick dispatched actions", "count", len(results))
		}
	}()
}

// Stop schedules no further ticks and waits for the in-flight tick to finish.
func (d *TickDriver) Stop() {
	d.once.Do(func() {
		close(d.stopped)
	})

	d.wg.Wait()
	d.logger.Info("Tick driver stopped")
}

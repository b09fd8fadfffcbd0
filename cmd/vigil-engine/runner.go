package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nexuslab/vigil/pkg/cmd"
	"github.com/nexuslab/vigil/pkg/driver"
	"github.com/nexuslab/vigil/pkg/engine"
	"github.com/nexuslab/vigil/pkg/eventbus"
	"github.com/nexuslab/vigil/pkg/events"
	"github.com/nexuslab/vigil/pkg/feed"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/notification"
	"github.com/nexuslab/vigil/pkg/otelhelper"
	"github.com/nexuslab/vigil/pkg/persistence"
	"github.com/nexuslab/vigil/pkg/simulator"
)

var defaultEquipment = []string{
	"Centrifuge_01:centrifuge",
	"Robot_01:robot",
	"Analyzer_01:analyzer",
	"Storage_01:storage",
	"Conveyor_01:conveyor",
}

type RunnerConfig struct {
	DatabaseURL  string
	RedisURL     string
	TickInterval time.Duration
	Equipment    []string
	Tracing      bool
	Scheduler    bool
	Schedule     string
}

// Runner owns the long-lived pieces of the engine process: the sensor
// simulator, the tick driver that feeds snapshots to the rule engine, the
// event bus carrying alert events, and the optional batch scheduler.
type Runner struct {
	id        string
	logger    *slog.Logger
	cfg       RunnerConfig
	store     persistence.Store
	alertFeed feed.Feed
	bus       eventbus.EventBus
	sim       *simulator.Simulator
	engine    *engine.Engine
	tick      *driver.TickDriver
	scheduler *driver.BatchScheduler
}

func NewRunner(ctx context.Context, id string, logger *slog.Logger, cfg RunnerConfig) (*Runner, error) {
	store, err := cmd.NewStore(ctx, logger, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	alertFeed, err := cmd.NewFeed(ctx, logger, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewGoChannelEventBus(logger)
	dispatcher := notification.NewDispatcher(notification.ConfigFromEnv(), logger)

	eng := engine.NewEngine(store, dispatcher, alertFeed, logger).
		WithEventPublisher(bus).
		WithVisualAlertSink(eventbus.NewVisualAlertNotifier(bus, logger))

	if cfg.Tracing {
		tracer, err := otelhelper.NewTracer(ctx, "vigil-engine")
		if err != nil {
			return nil, err
		}

		eng = eng.WithTracer(tracer)
	}

	sim := simulator.New(logger)

	for _, spec := range cfg.Equipment {
		equipmentID, equipmentType, ok := strings.Cut(spec, ":")
		if !ok {
			logger.Warn("Skipping malformed equipment spec, want id:type", "spec", spec)

			continue
		}

		keys := sim.RegisterEquipment(equipmentID, equipmentType)
		logger.Info("Registered equipment", "equipment_id", equipmentID, "sensors", len(keys))
	}

	runner := &Runner{
		id:        id,
		logger:    logger,
		cfg:       cfg,
		store:     store,
		alertFeed: alertFeed,
		bus:       bus,
		sim:       sim,
		engine:    eng,
		tick:      driver.NewTickDriver(cfg.TickInterval, sim, eng, logger),
	}

	if cfg.Scheduler {
		runner.scheduler = driver.NewBatchScheduler(sim, eng, logger)
	}

	return runner, nil
}

// Start runs until SIGINT or SIGTERM, then shuts the drivers down in order.
func (r *Runner) Start(ctx context.Context) error {
	err := r.bus.Handle(events.VisualAlertEvent, r.handleVisualAlert)
	if err != nil {
		return err
	}

	err = r.bus.Handle(events.ActionDispatchedEvent, r.handleActionDispatched)
	if err != nil {
		return err
	}

	err = r.bus.Subscribe(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	if r.scheduler != nil {
		err = r.scheduleActiveWorkflows(ctx)
		if err != nil {
			return err
		}

		r.scheduler.Start()
	}

	go r.tick.Start(ctx)

	r.logger.InfoContext(ctx, "Engine started", "tick_interval", r.cfg.TickInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	r.logger.InfoContext(ctx, "Shutting down engine...")

	r.tick.Stop()

	if r.scheduler != nil {
		r.scheduler.Stop()
	}

	if err := r.bus.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}

	if err := r.alertFeed.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close alert feed", "error", err)
	}

	if err := r.store.Close(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close store", "error", err)
	}

	return nil
}

func (r *Runner) scheduleActiveWorkflows(ctx context.Context) error {
	status := models.WorkflowStatusActive

	workflows, err := r.store.Workflows(ctx, &status)
	if err != nil {
		return err
	}

	for _, workflow := range workflows {
		err := r.scheduler.Add(r.cfg.Schedule, workflow.ID)
		if err != nil {
			return err
		}

		r.logger.InfoContext(ctx, "Scheduled batch execution", "workflow_id", workflow.ID, "schedule", r.cfg.Schedule)
	}

	return nil
}

func (r *Runner) handleVisualAlert(ctx context.Context, event any) error {
	alert, ok := event.(*events.VisualAlert)
	if !ok {
		r.logger.ErrorContext(ctx, "Invalid event type for VisualAlert")

		return nil
	}

	// Stands in for the monitor overlay: downstream consumers subscribe to
	// the same topic.
	r.logger.InfoContext(ctx, "Visual alert raised",
		"workflow_id", alert.WorkflowID,
		"equipment_id", alert.EquipmentID,
	)

	return nil
}

func (r *Runner) handleActionDispatched(ctx context.Context, event any) error {
	dispatched, ok := event.(*events.ActionDispatched)
	if !ok {
		r.logger.ErrorContext(ctx, "Invalid event type for ActionDispatched")

		return nil
	}

	logger := r.logger.With(
		"workflow_id", dispatched.WorkflowID,
		"action_node_id", dispatched.ActionNodeID,
		"action_type", dispatched.ActionType,
	)

	if dispatched.Success {
		logger.InfoContext(ctx, "Action dispatched")
	} else {
		logger.WarnContext(ctx, "Action dispatch failed", "error", dispatched.Error)
	}

	return nil
}

// Package engine evaluates workflow trigger conditions against sensor
// snapshots and dispatches the connected actions.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nexuslab/vigil/pkg/eventbus"
	"github.com/nexuslab/vigil/pkg/events"
	"github.com/nexuslab/vigil/pkg/feed"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/notification"
	"github.com/nexuslab/vigil/pkg/otelhelper"
	"github.com/nexuslab/vigil/pkg/persistence"
)

// VisualAlertSink receives the equipment id of a fired trigger so an
// external display layer can highlight it. Implementations must be
// fire-and-forget: non-blocking and never failing.
type VisualAlertSink interface {
	Notify(ctx context.Context, equipmentID string)
}

// Engine is stateless between ticks; all state lives in the workflow and the
// snapshot passed in. Dependencies are injected at construction.
type Engine struct {
	store      persistence.Store
	dispatcher *notification.Dispatcher
	alertFeed  feed.Feed
	sink       VisualAlertSink
	publisher  eventbus.EventPublisher
	tracer     trace.Tracer
	fixtures   *FixtureGenerator
	logger     *slog.Logger
}

func NewEngine(store persistence.Store, dispatcher *notification.Dispatcher, alertFeed feed.Feed, logger *slog.Logger) *Engine {
	return &Engine{
		store:      store,
		dispatcher: dispatcher,
		alertFeed:  alertFeed,
		tracer:     noop.NewTracerProvider().Tracer("vigil-engine"),
		fixtures:   NewFixtureGenerator(),
		logger:     logger.With("module", "engine"),
	}
}

// WithVisualAlertSink attaches an optional sink notified when a trigger with
// a specific equipment id fires.
func (e *Engine) WithVisualAlertSink(sink VisualAlertSink) *Engine {
	e.sink = sink

	return e
}

// WithEventPublisher attaches an optional event bus publisher.
func (e *Engine) WithEventPublisher(publisher eventbus.EventPublisher) *Engine {
	e.publisher = publisher

	return e
}

// WithTracer replaces the default no-op tracer.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	e.tracer = tracer

	return e
}

// WithFixtureGenerator replaces the randomized preview-data generator, used
// by tests that need deterministic previews.
func (e *Engine) WithFixtureGenerator(fixtures *FixtureGenerator) *Engine {
	e.fixtures = fixtures

	return e
}

// OnTick evaluates every active workflow against the snapshot. This is the
// entry point the tick driver calls; store failures degrade to logging so a
// flaky database cannot stop alert delivery.
func (e *Engine) OnTick(ctx context.Context, snapshot models.SensorSnapshot) []models.DispatchResult {
	status := models.WorkflowStatusActive

	workflows, err := e.store.Workflows(ctx, &status)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to load active workflows", "error", err)

		return nil
	}

	var results []models.DispatchResult

	for _, workflow := range workflows {
		results = append(results, e.EvaluateAndTrigger(ctx, workflow, snapshot)...)
	}

	return results
}

// EvaluateAndTrigger runs one lightweight tick-mode evaluation of a single
// workflow: no execution record is written, and alert-log persistence
// failures are logged and skipped rather than propagated.
func (e *Engine) EvaluateAndTrigger(ctx context.Context, workflow *models.Workflow, snapshot models.SensorSnapshot) []models.DispatchResult {
	results, err := e.run(ctx, workflow, snapshot, "", false)
	if err != nil {
		// Only store errors in strict mode reach here; tick mode never sets it.
		e.logger.ErrorContext(ctx, "Tick evaluation failed", "workflow_id", workflow.ID, "error", err)
	}

	return results
}

// ExecuteWorkflow runs one batch-mode execution: the workflow must be active,
// the run is bracketed by an execution record, and store failures propagate.
// Overall status is success when every dispatched action succeeded, partial
// when some failed, error when evaluation itself failed.
func (e *Engine) ExecuteWorkflow(ctx context.Context, workflowID, triggeredBy string, snapshot models.SensorSnapshot) (*models.ExecutionRecord, error) {
	workflow, err := e.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status != models.WorkflowStatusActive {
		return nil, fmt.Errorf("workflow %s has status %s: %w", workflowID, workflow.Status, ErrWorkflowNotActive)
	}

	startedAt := time.Now().UTC()

	executionID, err := e.store.LogExecutionStart(ctx, workflowID, triggeredBy, snapshot)
	if err != nil {
		return nil, err
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.execute_workflow",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.WorkflowNameKey, workflow.Name),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
	)
	defer span.End()

	e.publish(ctx, workflowID, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, workflowID),
		ExecutionID: executionID,
		TriggeredBy: triggeredBy,
	})

	dispatches, runErr := e.run(ctx, workflow, snapshot, executionID, true)

	status := models.ExecutionStatusSuccess
	result := &models.ExecutionResult{
		ActionsExecuted: len(dispatches),
		Results:         dispatches,
	}

	for _, dispatch := range dispatches {
		if !dispatch.Success {
			status = models.ExecutionStatusPartial

			break
		}
	}

	if runErr != nil {
		status = models.ExecutionStatusError
		result.Error = runErr.Error()

		otelhelper.SetError(span, runErr)
	}

	if err := e.store.LogExecutionComplete(ctx, executionID, status, result); err != nil {
		return nil, fmt.Errorf("failed to finalize execution %s: %w", executionID, err)
	}

	completedAt := time.Now().UTC()

	e.publish(ctx, workflowID, events.ExecutionCompleted{
		BaseEvent:       events.NewBaseEvent(events.ExecutionCompletedEvent, workflowID),
		ExecutionID:     executionID,
		Status:          status,
		ActionsExecuted: len(dispatches),
		Duration:        completedAt.Sub(startedAt),
	})

	record := &models.ExecutionRecord{
		ID:          executionID,
		WorkflowID:  workflowID,
		TriggeredBy: triggeredBy,
		TriggerData: snapshot,
		Status:      status,
		Result:      result,
		StartedAt:   startedAt,
		CompletedAt: &completedAt,
	}

	if runErr != nil {
		return record, runErr
	}

	return record, nil
}

// run is the shared evaluation core for tick and batch mode. strictStore
// controls whether alert-log persistence failures abort the run or degrade
// to logging.
func (e *Engine) run(ctx context.Context, workflow *models.Workflow, snapshot models.SensorSnapshot, executionID string, strictStore bool) ([]models.DispatchResult, error) {
	adjacency := workflow.AdjacencyMap()

	var results []models.DispatchResult

	for _, node := range workflow.Nodes {
		if !node.IsTriggerNode() || !node.Configured || node.Trigger == nil {
			continue
		}

		trigger := node.Trigger
		if trigger.SensorType == "" {
			continue
		}

		key := models.SensorKey(node.SensorEquipmentID(), trigger.SensorType)

		value, ok := snapshot[key]
		if !ok {
			// The sensor did not report this tick.
			continue
		}

		matched, err := EvaluateCondition(value, trigger.Operator, trigger.Threshold, trigger.ThresholdMax)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping trigger with invalid condition",
				"workflow_id", workflow.ID, "node_id", node.ID, "error", err)

			continue
		}

		if !matched {
			continue
		}

		e.logger.InfoContext(ctx, "Trigger fired",
			"workflow_id", workflow.ID, "node_id", node.ID,
			"sensor", key, "value", value, "operator", trigger.Operator, "threshold", trigger.Threshold)

		e.publish(ctx, workflow.ID, events.TriggerFired{
			BaseEvent:     events.NewBaseEvent(events.TriggerFiredEvent, workflow.ID),
			TriggerNodeID: node.ID,
			EquipmentID:   node.SensorEquipmentID(),
			SensorType:    trigger.SensorType,
			Value:         value,
			Threshold:     trigger.Threshold,
			Severity:      trigger.Severity,
		})

		if trigger.SpecificEquipmentID != "" && e.sink != nil {
			e.sink.Notify(ctx, trigger.SpecificEquipmentID)
		}

		for _, targetID := range adjacency[node.ID] {
			action := workflow.NodeByID(targetID)
			if action == nil || !action.IsActionNode() || !action.Configured || action.Action == nil {
				continue
			}

			result, dispatched, err := e.dispatchAction(ctx, workflow, node, action, value, executionID)
			if err != nil {
				if strictStore {
					return results, err
				}

				e.logger.ErrorContext(ctx, "Failed to persist alert log",
					"workflow_id", workflow.ID, "node_id", action.ID, "error", err)
			}

			if dispatched {
				results = append(results, result)
			}
		}
	}

	return results, nil
}

// dispatchAction renders and sends one notification, records it in the live
// feed and the audit log, and reports the outcome. A configured action with
// no recipient is inert: dispatched=false, no result, no log row. The
// returned error is always a store error; delivery failures live in the
// result.
func (e *Engine) dispatchAction(ctx context.Context, workflow *models.Workflow, trigger, action *models.Node, value float64, executionID string) (models.DispatchResult, bool, error) {
	cfg := action.Action
	triggerCfg := trigger.Trigger

	if cfg.Recipient == "" && cfg.Channel != notification.ChannelSystemAlert {
		return models.DispatchResult{}, false, nil
	}

	severity := cfg.Severity
	if severity == "" {
		severity = triggerCfg.Severity
	}

	now := time.Now().UTC()
	msg := notification.ThresholdAlert(
		trigger.DisplayLabel(), triggerCfg.SensorType,
		value, triggerCfg.Threshold, triggerCfg.Unit, severity, now,
	)

	if cfg.Channel == notification.ChannelWebhook {
		msg.Payload = notification.ThresholdPayload(
			workflow.ID, trigger.DisplayLabel(), triggerCfg.SensorType,
			value, triggerCfg.Threshold, severity, now,
		)
	}

	sent := e.dispatcher.Send(ctx, cfg.Channel, cfg.Recipient, msg)

	result := models.DispatchResult{
		TriggerNodeID: trigger.ID,
		ActionNodeID:  action.ID,
		ActionType:    cfg.Channel,
		Recipient:     cfg.Recipient,
		Success:       sent.Success,
		MessageID:     sent.MessageID,
		Error:         sent.Error,
		Timestamp:     sent.Timestamp,
	}

	e.publish(ctx, workflow.ID, events.ActionDispatched{
		BaseEvent:    events.NewBaseEvent(events.ActionDispatchedEvent, workflow.ID),
		ActionNodeID: action.ID,
		ActionType:   cfg.Channel,
		Recipient:    cfg.Recipient,
		Success:      sent.Success,
		Error:        sent.Error,
	})

	if err := e.alertFeed.Append(ctx, models.FeedEntry{
		ID:         uuid.New().String(),
		Equipment:  trigger.DisplayLabel(),
		Sensor:     triggerCfg.SensorType,
		Value:      value,
		Threshold:  triggerCfg.Threshold,
		ActionType: cfg.Channel,
		Recipient:  cfg.Recipient,
		Severity:   severity,
		Success:    sent.Success,
		Timestamp:  sent.Timestamp,
	}); err != nil {
		e.logger.WarnContext(ctx, "Failed to append alert feed entry", "error", err)
	}

	entry := &models.AlertLogEntry{
		ExecutionID:  executionID,
		WorkflowID:   workflow.ID,
		ActionType:   cfg.Channel,
		Recipient:    cfg.Recipient,
		Message:      msg.Subject,
		Status:       alertStatus(cfg.Channel, sent.Success),
		ErrorMessage: sent.Error,
	}

	if _, err := e.store.LogAlert(ctx, entry); err != nil {
		return result, true, persistence.NewStoreError("log_alert", workflow.ID, err)
	}

	return result, true, nil
}

func alertStatus(channel string, success bool) models.AlertStatus {
	switch {
	case !success:
		return models.AlertStatusFailed
	case channel == notification.ChannelSystemAlert:
		return models.AlertStatusLogged
	default:
		return models.AlertStatusSent
	}
}

func (e *Engine) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.publisher == nil {
		return
	}

	if err := e.publisher.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

// Package events defines the event types published on the engine's bus.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/nexuslab/vigil/pkg/models"
)

type EventType string

const Topic = "vigil.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TriggerFiredEvent       EventType = "trigger.fired"
	VisualAlertEvent        EventType = "visual.alert"
	ActionDispatchedEvent   EventType = "action.dispatched"
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

// TriggerFired is published when a trigger node's condition matches the
// current snapshot. EquipmentID carries the visual-alert target when the
// trigger names a specific equipment.
type TriggerFired struct {
	BaseEvent

	TriggerNodeID string          `json:"trigger_node_id"`
	EquipmentID   string          `json:"equipment_id"`
	SensorType    string          `json:"sensor_type"`
	Value         float64         `json:"value"`
	Threshold     float64         `json:"threshold"`
	Severity      models.Severity `json:"severity"`
}

func (e TriggerFired) GetType() EventType {
	return TriggerFiredEvent
}

// VisualAlert asks a display layer to highlight one equipment. Fire and
// forget; no subscriber is required.
type VisualAlert struct {
	BaseEvent

	EquipmentID string `json:"equipment_id"`
}

func (e VisualAlert) GetType() EventType {
	return VisualAlertEvent
}

// ActionDispatched is published after one action dispatch attempt, whether it
// succeeded or not.
type ActionDispatched struct {
	BaseEvent

	ActionNodeID string `json:"action_node_id"`
	ActionType   string `json:"action_type"`
	Recipient    string `json:"recipient,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

func (e ActionDispatched) GetType() EventType {
	return ActionDispatchedEvent
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	TriggeredBy string `json:"triggered_by"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID     string                 `json:"execution_id"`
	Status          models.ExecutionStatus `json:"status"`
	ActionsExecuted int                    `json:"actions_executed"`
	Duration        time.Duration          `json:"duration"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

package models

import "time"

// ExecutionStatus is the lifecycle state of one batch workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusPartial ExecutionStatus = "partial" // Some action dispatches failed
	ExecutionStatusError   ExecutionStatus = "error"   // Evaluation itself failed
)

// ExecutionRecord captures one batch run of a workflow. Created when the run
// starts, finalized when it ends, immutable afterwards.
type ExecutionRecord struct {
	ID          string           `json:"id"`
	WorkflowID  string           `json:"workflow_id"`
	TriggeredBy string           `json:"triggered_by"`
	TriggerData SensorSnapshot   `json:"trigger_data,omitempty"`
	Status      ExecutionStatus  `json:"status"`
	Result      *ExecutionResult `json:"result,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// ExecutionResult summarizes what a batch execution did.
type ExecutionResult struct {
	ActionsExecuted int              `json:"actions_executed"`
	Results         []DispatchResult `json:"results,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// DispatchResult records one action dispatch attempt within an execution or
// tick.
type DispatchResult struct {
	TriggerNodeID string    `json:"trigger_node_id"`
	ActionNodeID  string    `json:"action_node_id"`
	ActionType    string    `json:"action_type"`
	Recipient     string    `json:"recipient,omitempty"`
	Success       bool      `json:"success"`
	MessageID     string    `json:"message_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

package models

import "time"

// AlertStatus is the delivery state of one logged alert.
type AlertStatus string

const (
	AlertStatusPending AlertStatus = "pending"
	AlertStatusSent    AlertStatus = "sent"
	AlertStatusFailed  AlertStatus = "failed"
	AlertStatusLogged  AlertStatus = "logged" // System channel: acknowledged in-app, no external I/O
)

// AlertLogEntry is one row of the append-only alert audit trail, one per
// dispatched action attempt.
type AlertLogEntry struct {
	ID           string      `json:"id"`
	ExecutionID  string      `json:"execution_id,omitempty"`
	WorkflowID   string      `json:"workflow_id"`
	ActionType   string      `json:"action_type"`
	Recipient    string      `json:"recipient"`
	Message      string      `json:"message"`
	Status       AlertStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// FeedEntry is one row of the live, bounded alert feed shown while a
// simulation runs. Richer than the audit row: it keeps the sensor context
// that produced the alert.
type FeedEntry struct {
	ID         string    `json:"id"`
	Equipment  string    `json:"equipment"`
	Sensor     string    `json:"sensor"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	ActionType string    `json:"action_type"`
	Recipient  string    `json:"recipient"`
	Severity   Severity  `json:"severity"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
}

// Package persistence provides the data storage abstraction for workflows,
// execution records and alert logs.
package persistence

import (
	"context"

	"github.com/nexuslab/vigil/pkg/models"
)

// Store is the single source of truth the engine reads from and logs to.
// Implementations must serialize writes per workflow id; reads may be
// snapshot-isolated.
type Store interface {
	// SaveWorkflow upserts by id: insert, or full overwrite of the mutable
	// fields, bumping UpdatedAt. A duplicate id is an overwrite, never an
	// error.
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	// Workflows lists workflows ordered by UpdatedAt descending, optionally
	// filtered by status.
	Workflows(ctx context.Context, status *models.WorkflowStatus) ([]*models.Workflow, error)
	// DeleteWorkflow is idempotent: deleting an unknown id is not an error.
	DeleteWorkflow(ctx context.Context, id string) error
	UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error

	// LogExecutionStart creates a running execution record and returns its
	// id immediately; the caller needs it before dispatch completes.
	LogExecutionStart(ctx context.Context, workflowID, triggeredBy string, triggerData models.SensorSnapshot) (string, error)
	LogExecutionComplete(ctx context.Context, executionID string, status models.ExecutionStatus, result *models.ExecutionResult) error
	RecentExecutions(ctx context.Context, limit int, workflowID string) ([]*models.ExecutionRecord, error)

	LogAlert(ctx context.Context, entry *models.AlertLogEntry) (string, error)
	UpdateAlertStatus(ctx context.Context, alertID string, status models.AlertStatus, errorMessage string) error
	// RecentAlerts lists alert log rows ordered by CreatedAt descending,
	// optionally filtered by action type.
	RecentAlerts(ctx context.Context, limit int, actionType string) ([]*models.AlertLogEntry, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

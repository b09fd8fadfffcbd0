package postgresql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/persistence"
)

// LogAlert appends one alert log row and returns its id.
func (s *Store) LogAlert(ctx context.Context, entry *models.AlertLogEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if entry.Status == "" {
		entry.Status = models.AlertStatusPending
	}

	executionID := sql.NullString{String: entry.ExecutionID, Valid: entry.ExecutionID != ""}
	errorMessage := sql.NullString{String: entry.ErrorMessage, Valid: entry.ErrorMessage != ""}

	query := `
		INSERT INTO alert_logs (id, execution_id, workflow_id, action_type, recipient, message, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		executionID,
		entry.WorkflowID,
		entry.ActionType,
		entry.Recipient,
		entry.Message,
		entry.Status,
		errorMessage,
		entry.CreatedAt,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to log alert", "workflow_id", entry.WorkflowID, "action_type", entry.ActionType, "error", err)

		return "", persistence.NewStoreError("LogAlert", entry.WorkflowID, err)
	}

	return entry.ID, nil
}

// UpdateAlertStatus updates the delivery status of a logged alert.
func (s *Store) UpdateAlertStatus(ctx context.Context, alertID string, status models.AlertStatus, errorMessage string) error {
	errMsg := sql.NullString{String: errorMessage, Valid: errorMessage != ""}

	result, err := s.db.ExecContext(ctx,
		"UPDATE alert_logs SET status = $1, error_message = $2 WHERE id = $3",
		status, errMsg, alertID,
	)
	if err != nil {
		return persistence.NewStoreError("UpdateAlertStatus", alertID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("UpdateAlertStatus", alertID, err)
	}

	if affected == 0 {
		return persistence.ErrAlertNotFound
	}

	return nil
}

// RecentAlerts lists alert log rows ordered by created_at descending,
// optionally filtered by action type.
func (s *Store) RecentAlerts(ctx context.Context, limit int, actionType string) ([]*models.AlertLogEntry, error) {
	query := `
		SELECT id, execution_id, workflow_id, action_type, recipient, message, status, error_message, created_at
		FROM alert_logs
	`

	var (
		rows *sql.Rows
		err  error
	)

	if actionType != "" {
		rows, err = s.db.QueryContext(ctx, query+" WHERE action_type = $1 ORDER BY created_at DESC LIMIT $2", actionType, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query+" ORDER BY created_at DESC LIMIT $1", limit)
	}

	if err != nil {
		return nil, persistence.NewStoreError("RecentAlerts", "", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	alerts := make([]*models.AlertLogEntry, 0, limit)

	for rows.Next() {
		var (
			entry        models.AlertLogEntry
			executionID  sql.NullString
			errorMessage sql.NullString
		)

		err := rows.Scan(
			&entry.ID,
			&executionID,
			&entry.WorkflowID,
			&entry.ActionType,
			&entry.Recipient,
			&entry.Message,
			&entry.Status,
			&errorMessage,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, persistence.NewStoreError("RecentAlerts", "", err)
		}

		entry.ExecutionID = executionID.String
		entry.ErrorMessage = errorMessage.String

		alerts = append(alerts, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("RecentAlerts", "", err)
	}

	return alerts, nil
}

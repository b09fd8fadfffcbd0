package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/persistence"
)

// LogExecutionStart inserts a running execution record and returns its id.
func (s *Store) LogExecutionStart(ctx context.Context, workflowID, triggeredBy string, triggerData models.SensorSnapshot) (string, error) {
	executionID := uuid.New().String()

	var triggerDataJSON sql.NullString

	if len(triggerData) > 0 {
		data, err := json.Marshal(triggerData)
		if err != nil {
			return "", persistence.NewStoreError("LogExecutionStart", workflowID, fmt.Errorf("failed to serialize trigger data: %w", err))
		}

		triggerDataJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO workflow_executions (id, workflow_id, triggered_by, trigger_data_json, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		executionID,
		workflowID,
		triggeredBy,
		triggerDataJSON,
		models.ExecutionStatusRunning,
		time.Now().UTC(),
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to log execution start", "workflow_id", workflowID, "error", err)

		return "", persistence.NewStoreError("LogExecutionStart", workflowID, err)
	}

	return executionID, nil
}

// LogExecutionComplete finalizes an execution record.
func (s *Store) LogExecutionComplete(ctx context.Context, executionID string, status models.ExecutionStatus, result *models.ExecutionResult) error {
	var resultJSON sql.NullString

	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return persistence.NewStoreError("LogExecutionComplete", executionID, fmt.Errorf("failed to serialize result: %w", err))
		}

		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		UPDATE workflow_executions
		SET status = $1, result_json = $2, completed_at = $3
		WHERE id = $4
	`

	res, err := s.db.ExecContext(ctx, query, status, resultJSON, time.Now().UTC(), executionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to log execution completion", "execution_id", executionID, "error", err)

		return persistence.NewStoreError("LogExecutionComplete", executionID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("LogExecutionComplete", executionID, err)
	}

	if affected == 0 {
		return persistence.ErrExecutionNotFound
	}

	return nil
}

// RecentExecutions lists execution records ordered by started_at descending,
// optionally filtered by workflow id.
func (s *Store) RecentExecutions(ctx context.Context, limit int, workflowID string) ([]*models.ExecutionRecord, error) {
	query := `
		SELECT id, workflow_id, triggered_by, trigger_data_json, status, result_json, started_at, completed_at
		FROM workflow_executions
	`

	var (
		rows *sql.Rows
		err  error
	)

	if workflowID != "" {
		rows, err = s.db.QueryContext(ctx, query+" WHERE workflow_id = $1 ORDER BY started_at DESC LIMIT $2", workflowID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query+" ORDER BY started_at DESC LIMIT $1", limit)
	}

	if err != nil {
		return nil, persistence.NewStoreError("RecentExecutions", workflowID, err)
	}

	defer func() {
		_ = rows.Close()
	}()

	executions := make([]*models.ExecutionRecord, 0, limit)

	for rows.Next() {
		var (
			record          models.ExecutionRecord
			triggerDataJSON sql.NullString
			resultJSON      sql.NullString
			completedAt     sql.NullTime
		)

		err := rows.Scan(
			&record.ID,
			&record.WorkflowID,
			&record.TriggeredBy,
			&triggerDataJSON,
			&record.Status,
			&resultJSON,
			&record.StartedAt,
			&completedAt,
		)
		if err != nil {
			return nil, persistence.NewStoreError("RecentExecutions", workflowID, err)
		}

		if triggerDataJSON.Valid {
			if err := json.Unmarshal([]byte(triggerDataJSON.String), &record.TriggerData); err != nil {
				return nil, persistence.NewStoreError("RecentExecutions", record.ID, fmt.Errorf("failed to deserialize trigger data: %w", err))
			}
		}

		if resultJSON.Valid {
			record.Result = &models.ExecutionResult{}
			if err := json.Unmarshal([]byte(resultJSON.String), record.Result); err != nil {
				return nil, persistence.NewStoreError("RecentExecutions", record.ID, fmt.Errorf("failed to deserialize result: %w", err))
			}
		}

		if completedAt.Valid {
			record.CompletedAt = &completedAt.Time
		}

		executions = append(executions, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("RecentExecutions", workflowID, err)
	}

	return executions, nil
}

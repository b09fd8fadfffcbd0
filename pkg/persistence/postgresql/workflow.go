package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/persistence"
)

// SaveWorkflow upserts a workflow by id, overwriting the mutable fields and
// bumping updated_at on conflict.
func (s *Store) SaveWorkflow(ctx context.Context, workflow *models.Workflow) error {
	query := `
		INSERT INTO workflows (
			id, name, description, nodes_json, edges_json, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			nodes_json = EXCLUDED.nodes_json,
			edges_json = EXCLUDED.edges_json,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	nodesJSON, err := json.Marshal(workflow.Nodes)
	if err != nil {
		return persistence.NewStoreError("SaveWorkflow", workflow.ID, fmt.Errorf("failed to serialize nodes: %w", err))
	}

	edgesJSON, err := json.Marshal(workflow.Edges)
	if err != nil {
		return persistence.NewStoreError("SaveWorkflow", workflow.ID, fmt.Errorf("failed to serialize edges: %w", err))
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	_, err = s.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		string(nodesJSON),
		string(edgesJSON),
		workflow.Status,
		workflow.CreatedAt,
		workflow.UpdatedAt,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save workflow", "workflow_id", workflow.ID, "error", err)

		return persistence.NewStoreError("SaveWorkflow", workflow.ID, err)
	}

	s.logger.DebugContext(ctx, "Workflow saved", "workflow_id", workflow.ID, "status", workflow.Status)

	return nil
}

// WorkflowByID retrieves a workflow by id.
func (s *Store) WorkflowByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT id, name, description, nodes_json, edges_json, status, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`

	workflow, err := s.scanWorkflow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		s.logger.ErrorContext(ctx, "Failed to scan workflow", "workflow_id", id, "error", err)

		return nil, persistence.NewStoreError("WorkflowByID", id, err)
	}

	return workflow, nil
}

// Workflows lists workflows ordered by updated_at descending, optionally
// filtered by status.
func (s *Store) Workflows(ctx context.Context, status *models.WorkflowStatus) ([]*models.Workflow, error) {
	query := `
		SELECT id, name, description, nodes_json, edges_json, status, created_at, updated_at
		FROM workflows
	`

	var (
		rows *sql.Rows
		err  error
	)

	if status != nil {
		rows, err = s.db.QueryContext(ctx, query+" WHERE status = $1 ORDER BY updated_at DESC", *status)
	} else {
		rows, err = s.db.QueryContext(ctx, query+" ORDER BY updated_at DESC")
	}

	if err != nil {
		return nil, persistence.NewStoreError("Workflows", "", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := s.scanWorkflow(rows)
		if err != nil {
			return nil, persistence.NewStoreError("Workflows", "", err)
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, persistence.NewStoreError("Workflows", "", err)
	}

	return workflows, nil
}

// DeleteWorkflow removes a workflow. Deleting an unknown id is a no-op.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return persistence.NewStoreError("DeleteWorkflow", id, err)
	}

	return nil
}

// UpdateWorkflowStatus sets the workflow status and bumps updated_at.
func (s *Store) UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE workflows SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return persistence.NewStoreError("UpdateWorkflowStatus", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("UpdateWorkflowStatus", id, err)
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow  models.Workflow
		nodesJSON string
		edgesJSON string
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&nodesJSON,
		&edgesJSON,
		&workflow.Status,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(nodesJSON), &workflow.Nodes); err != nil {
		return nil, fmt.Errorf("failed to deserialize nodes: %w", err)
	}

	if err := json.Unmarshal([]byte(edgesJSON), &workflow.Edges); err != nil {
		return nil, fmt.Errorf("failed to deserialize edges: %w", err)
	}

	return &workflow, nil
}

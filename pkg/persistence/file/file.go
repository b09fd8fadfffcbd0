// Package file implements the workflow store on per-entity JSON files.
// Suitable for demos and single-node deployments without a database.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/persistence"
)

const dirPerm = 0o755

// Store persists workflows, execution records and alert logs as JSON files
// under a root directory. A single mutex serializes writes, which satisfies
// the per-workflow write ordering requirement.
type Store struct {
	root string
	mu   sync.Mutex
}

// NewStore creates the directory layout under root.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{"workflows", "executions", "alerts"} {
		if err := os.MkdirAll(filepath.Join(root, dir), dirPerm); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	return &Store{root: root}, nil
}

func (s *Store) workflowPath(id string) string {
	return filepath.Join(s.root, "workflows", id+".json")
}

func (s *Store) executionPath(id string) string {
	return filepath.Join(s.root, "executions", id+".json")
}

func (s *Store) alertPath(id string) string {
	return filepath.Join(s.root, "alerts", id+".json")
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

// SaveWorkflow upserts the workflow file.
func (s *Store) SaveWorkflow(_ context.Context, workflow *models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	if err := writeJSON(s.workflowPath(workflow.ID), workflow); err != nil {
		return persistence.NewStoreError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

// WorkflowByID reads one workflow file.
func (s *Store) WorkflowByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	err := readJSON(s.workflowPath(id), &workflow)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, persistence.NewStoreError("WorkflowByID", id, err)
	}

	return &workflow, nil
}

// Workflows lists all workflows ordered by UpdatedAt descending.
func (s *Store) Workflows(ctx context.Context, status *models.WorkflowStatus) ([]*models.Workflow, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, "workflows", "*.json"))
	if err != nil {
		return nil, persistence.NewStoreError("Workflows", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(paths))

	for _, path := range paths {
		id := filepath.Base(path)
		id = id[:len(id)-len(".json")]

		workflow, err := s.WorkflowByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if status != nil && workflow.Status != *status {
			continue
		}

		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].UpdatedAt.After(workflows[j].UpdatedAt)
	})

	return workflows, nil
}

// DeleteWorkflow removes the workflow file; unknown ids are a no-op.
func (s *Store) DeleteWorkflow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.workflowPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return persistence.NewStoreError("DeleteWorkflow", id, err)
	}

	return nil
}

// UpdateWorkflowStatus rewrites the workflow file with the new status.
func (s *Store) UpdateWorkflowStatus(ctx context.Context, id string, status models.WorkflowStatus) error {
	workflow, err := s.WorkflowByID(ctx, id)
	if err != nil {
		return err
	}

	workflow.Status = status

	return s.SaveWorkflow(ctx, workflow)
}

// LogExecutionStart creates a running execution record file.
func (s *Store) LogExecutionStart(_ context.Context, workflowID, triggeredBy string, triggerData models.SensorSnapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := &models.ExecutionRecord{
		ID:          uuid.New().String(),
		WorkflowID:  workflowID,
		TriggeredBy: triggeredBy,
		TriggerData: triggerData,
		Status:      models.ExecutionStatusRunning,
		StartedAt:   time.Now().UTC(),
	}

	if err := writeJSON(s.executionPath(record.ID), record); err != nil {
		return "", persistence.NewStoreError("LogExecutionStart", workflowID, err)
	}

	return record.ID, nil
}

// LogExecutionComplete finalizes an execution record file.
func (s *Store) LogExecutionComplete(_ context.Context, executionID string, status models.ExecutionStatus, result *models.ExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var record models.ExecutionRecord

	err := readJSON(s.executionPath(executionID), &record)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.ErrExecutionNotFound
		}

		return persistence.NewStoreError("LogExecutionComplete", executionID, err)
	}

	now := time.Now().UTC()
	record.Status = status
	record.Result = result
	record.CompletedAt = &now

	if err := writeJSON(s.executionPath(executionID), &record); err != nil {
		return persistence.NewStoreError("LogExecutionComplete", executionID, err)
	}

	return nil
}

// RecentExecutions lists execution records ordered by StartedAt descending.
func (s *Store) RecentExecutions(_ context.Context, limit int, workflowID string) ([]*models.ExecutionRecord, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, "executions", "*.json"))
	if err != nil {
		return nil, persistence.NewStoreError("RecentExecutions", workflowID, err)
	}

	records := make([]*models.ExecutionRecord, 0, len(paths))

	for _, path := range paths {
		var record models.ExecutionRecord

		if err := readJSON(path, &record); err != nil {
			return nil, persistence.NewStoreError("RecentExecutions", workflowID, err)
		}

		if workflowID != "" && record.WorkflowID != workflowID {
			continue
		}

		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// LogAlert appends one alert log file.
func (s *Store) LogAlert(_ context.Context, entry *models.AlertLogEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if entry.Status == "" {
		entry.Status = models.AlertStatusPending
	}

	if err := writeJSON(s.alertPath(entry.ID), entry); err != nil {
		return "", persistence.NewStoreError("LogAlert", entry.WorkflowID, err)
	}

	return entry.ID, nil
}

// UpdateAlertStatus rewrites an alert log file with the new status.
func (s *Store) UpdateAlertStatus(_ context.Context, alertID string, status models.AlertStatus, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry models.AlertLogEntry

	err := readJSON(s.alertPath(alertID), &entry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.ErrAlertNotFound
		}

		return persistence.NewStoreError("UpdateAlertStatus", alertID, err)
	}

	entry.Status = status
	entry.ErrorMessage = errorMessage

	if err := writeJSON(s.alertPath(alertID), &entry); err != nil {
		return persistence.NewStoreError("UpdateAlertStatus", alertID, err)
	}

	return nil
}

// RecentAlerts lists alert log entries ordered by CreatedAt descending.
func (s *Store) RecentAlerts(_ context.Context, limit int, actionType string) ([]*models.AlertLogEntry, error) {
	paths, err := filepath.Glob(filepath.Join(s.root, "alerts", "*.json"))
	if err != nil {
		return nil, persistence.NewStoreError("RecentAlerts", "", err)
	}

	alerts := make([]*models.AlertLogEntry, 0, len(paths))

	for _, path := range paths {
		var entry models.AlertLogEntry

		if err := readJSON(path, &entry); err != nil {
			return nil, persistence.NewStoreError("RecentAlerts", "", err)
		}

		if actionType != "" && entry.ActionType != actionType {
			continue
		}

		alerts = append(alerts, &entry)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})

	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}

	return alerts, nil
}

// HealthCheck verifies the root directory is accessible.
func (s *Store) HealthCheck(_ context.Context) error {
	_, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("store root inaccessible: %w", err)
	}

	return nil
}

// Close is a no-op for the file store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

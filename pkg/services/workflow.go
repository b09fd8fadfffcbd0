package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/persistence"
)

// triggerConfigSchema constrains trigger node config beyond struct tags:
// operator and severity enums, numeric thresholds.
var triggerConfigSchema = map[string]any{
	"type":     "object",
	"required": []string{"equipment_id", "sensor_type", "operator"},
	"properties": map[string]any{
		"equipment_id": map[string]any{"type": "string", "minLength": 1},
		"sensor_type":  map[string]any{"type": "string", "minLength": 1},
		"operator": map[string]any{
			"type": "string",
			"enum": []string{">", "<", ">=", "<=", "==", "!=", "between", "not_between"},
		},
		"threshold":     map[string]any{"type": "number"},
		"threshold_max": map[string]any{"type": "number"},
		"severity": map[string]any{
			"type": "string",
			"enum": []string{"info", "warning", "critical"},
		},
	},
}

var actionConfigSchema = map[string]any{
	"type":     "object",
	"required": []string{"channel"},
	"properties": map[string]any{
		"channel": map[string]any{
			"type": "string",
			"enum": []string{"whatsapp", "email", "webhook", "system_alert"},
		},
		"recipient": map[string]any{"type": "string"},
		"severity": map[string]any{
			"type": "string",
			"enum": []string{"info", "warning", "critical"},
		},
	},
}

var validStatuses = map[models.WorkflowStatus]bool{
	models.WorkflowStatusDraft:  true,
	models.WorkflowStatusActive: true,
	models.WorkflowStatusPaused: true,
	models.WorkflowStatusError:  true,
}

// WorkflowService owns workflow lifecycle rules: shape validation on save and
// the activation invariant on status transitions. The engine is a read-only
// consumer of what this service writes.
type WorkflowService struct {
	store    persistence.Store
	validate *validator.Validate
	logger   *slog.Logger
}

func NewWorkflowService(store persistence.Store, logger *slog.Logger) *WorkflowService {
	return &WorkflowService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "workflow_service"),
	}
}

// Save upserts a workflow. A missing id gets one assigned, a missing status
// defaults to draft, and an active status must satisfy the activation rule.
func (s *WorkflowService) Save(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, NewValidationError("save_workflow", "workflow is required", ErrWorkflowNil)
	}

	if workflow.ID == "" {
		workflow.ID = uuid.New().String()
	}

	if workflow.Status == "" {
		workflow.Status = models.WorkflowStatusDraft
	}

	if err := s.Validate(workflow); err != nil {
		return nil, err
	}

	workflow.UpdatedAt = time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = workflow.UpdatedAt
	}

	if err := s.store.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	s.logger.InfoContext(ctx, "Workflow saved",
		"workflow_id", workflow.ID, "name", workflow.Name, "status", workflow.Status)

	return workflow, nil
}

func (s *WorkflowService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return s.store.WorkflowByID(ctx, id)
}

func (s *WorkflowService) List(ctx context.Context, status *models.WorkflowStatus) ([]*models.Workflow, error) {
	if status != nil && !validStatuses[*status] {
		return nil, NewValidationError("list_workflows", fmt.Sprintf("unknown status %q", *status), ErrInvalidStatus)
	}

	return s.store.Workflows(ctx, status)
}

// Delete is idempotent, matching the store's contract.
func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteWorkflow(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", id)

	return nil
}

// UpdateStatus transitions a workflow. Activating enforces the activation
// rule against the stored definition.
func (s *WorkflowService) UpdateStatus(ctx context.Context, id string, status models.WorkflowStatus) error {
	if !validStatuses[status] {
		return NewValidationError("update_status", fmt.Sprintf("unknown status %q", status), ErrInvalidStatus)
	}

	if status == models.WorkflowStatusActive {
		workflow, err := s.store.WorkflowByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.checkActivation(workflow); err != nil {
			return err
		}
	}

	if err := s.store.UpdateWorkflowStatus(ctx, id, status); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Workflow status updated", "workflow_id", id, "status", status)

	return nil
}

// HealthCheck reports whether the persistence layer is reachable.
func (s *WorkflowService) HealthCheck(ctx context.Context) (string, bool) {
	if err := s.store.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Validate checks workflow shape: struct tags, per-node config schemas and,
// for active workflows, the activation rule.
func (s *WorkflowService) Validate(workflow *models.Workflow) error {
	if workflow == nil {
		return NewValidationError("validate_workflow", "workflow is required", ErrWorkflowNil)
	}

	if strings.TrimSpace(workflow.Name) == "" {
		return NewValidationError("validate_workflow", "name is required", ErrWorkflowNameRequired)
	}

	if !validStatuses[workflow.Status] {
		return NewValidationError("validate_workflow", fmt.Sprintf("unknown status %q", workflow.Status), ErrInvalidStatus)
	}

	if err := s.validate.Struct(workflow); err != nil {
		return NewValidationError("validate_workflow", err.Error(), ErrInvalidNodeConfig)
	}

	for _, node := range workflow.Nodes {
		if err := s.validateNodeConfig(node); err != nil {
			return err
		}
	}

	if workflow.Status == models.WorkflowStatusActive {
		if err := s.checkActivation(workflow); err != nil {
			return err
		}
	}

	return nil
}

// validateNodeConfig runs the JSON-schema check for a configured node. Nodes
// with Configured=false are drafts the engine skips, so their config may be
// incomplete.
func (s *WorkflowService) validateNodeConfig(node *models.Node) error {
	if !node.Configured {
		return nil
	}

	var (
		schema map[string]any
		config any
	)

	switch {
	case node.IsActionNode():
		if node.Action == nil {
			return NewValidationError("validate_node",
				fmt.Sprintf("node %s is a configured action without action config", node.ID), ErrInvalidNodeConfig)
		}

		schema, config = actionConfigSchema, node.Action
	default:
		if node.Trigger == nil {
			return NewValidationError("validate_node",
				fmt.Sprintf("node %s is a configured trigger without trigger config", node.ID), ErrInvalidNodeConfig)
		}

		schema, config = triggerConfigSchema, node.Trigger
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("failed to validate node %s: %w", node.ID, err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return NewValidationError("validate_node",
			fmt.Sprintf("node %s: %s", node.ID, strings.Join(problems, "; ")), ErrInvalidNodeConfig)
	}

	return nil
}

// checkActivation enforces the activation rule: at least one configured
// trigger with an outgoing edge to an action node.
func (s *WorkflowService) checkActivation(workflow *models.Workflow) error {
	if len(workflow.Nodes) == 0 {
		return NewValidationError("activate_workflow", "workflow has no nodes", ErrNodesRequired)
	}

	adjacency := workflow.AdjacencyMap()

	for _, node := range workflow.Nodes {
		if !node.IsTriggerNode() || !node.Configured || node.Trigger == nil {
			continue
		}

		for _, targetID := range adjacency[node.ID] {
			target := workflow.NodeByID(targetID)
			if target != nil && target.IsActionNode() {
				return nil
			}
		}
	}

	return NewValidationError("activate_workflow",
		"no configured trigger is connected to an action", ErrTriggerNodeRequired)
}

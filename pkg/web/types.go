// Package web provides HTTP request and response types plus the REST
// handlers for workflow management, execution and alert history.
package web

import (
	"github.com/nexuslab/vigil/pkg/models"
)

// SaveWorkflowRequest is the body for creating or replacing a workflow. The
// editing surface rewrites nodes and edges wholesale on save.
type SaveWorkflowRequest struct {
	Name        string                `json:"name"        validate:"required,min=3"`
	Description string                `json:"description"`
	Status      models.WorkflowStatus `json:"status"`
	Nodes       []*models.Node        `json:"nodes"`
	Edges       []*models.Edge        `json:"edges"`
}

// UpdateStatusRequest transitions a workflow between draft, active and
// paused.
type UpdateStatusRequest struct {
	Status models.WorkflowStatus `json:"status" validate:"required"`
}

// ExecuteWorkflowRequest starts one audited batch execution against the
// supplied snapshot.
type ExecuteWorkflowRequest struct {
	SensorData  models.SensorSnapshot `json:"sensor_data"`
	TriggeredBy string                `json:"triggered_by"`
}

// TestWorkflowRequest previews a workflow. SensorData may be omitted to get
// generated values.
type TestWorkflowRequest struct {
	SensorData models.SensorSnapshot `json:"sensor_data,omitempty"`
}

func (r *SaveWorkflowRequest) toWorkflow(id string) *models.Workflow {
	return &models.Workflow{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Nodes:       r.Nodes,
		Edges:       r.Edges,
	}
}

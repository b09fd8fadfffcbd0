package engine

import (
	"context"

	"github.com/nexuslab/vigil/pkg/models"
)

// TriggerPreview describes how one configured trigger would behave against
// the preview snapshot.
type TriggerPreview struct {
	NodeID           string          `json:"node_id"`
	Label            string          `json:"label"`
	SensorKey        string          `json:"sensor_key"`
	CurrentValue     float64         `json:"current_value"`
	Operator         models.Operator `json:"operator"`
	Threshold        float64         `json:"threshold"`
	ThresholdMax     *float64        `json:"threshold_max,omitempty"`
	WouldTrigger     bool            `json:"would_trigger"`
	ConnectedActions []string        `json:"connected_actions"`
}

// Preview is the result of a workflow dry run: no dispatch, no persistence.
type Preview struct {
	WorkflowID    string                `json:"workflow_id"`
	WorkflowName  string                `json:"workflow_name"`
	SensorData    models.SensorSnapshot `json:"sensor_data"`
	Triggers      []TriggerPreview      `json:"triggers"`
	WouldDispatch int                   `json:"would_dispatch"`
}

// TestWorkflow evaluates the workflow's triggers without dispatching or
// persisting anything. When mockData is nil a synthetic snapshot is generated
// that fires each trigger roughly half the time; a trigger whose sensor key
// is absent from a caller-supplied snapshot evaluates against zero.
func (e *Engine) TestWorkflow(ctx context.Context, workflowID string, mockData models.SensorSnapshot) (*Preview, error) {
	workflow, err := e.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if mockData == nil {
		mockData = e.fixtures.Snapshot(workflow)
	}

	adjacency := workflow.AdjacencyMap()
	preview := &Preview{
		WorkflowID:   workflow.ID,
		WorkflowName: workflow.Name,
		SensorData:   mockData,
		Triggers:     []TriggerPreview{},
	}

	for _, node := range workflow.Nodes {
		if !node.IsTriggerNode() || !node.Configured || node.Trigger == nil || node.Trigger.SensorType == "" {
			continue
		}

		trigger := node.Trigger
		key := models.SensorKey(node.SensorEquipmentID(), trigger.SensorType)
		value := mockData[key]

		matched, err := EvaluateCondition(value, trigger.Operator, trigger.Threshold, trigger.ThresholdMax)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping trigger with invalid condition",
				"workflow_id", workflow.ID, "node_id", node.ID, "error", err)

			continue
		}

		var actions []string

		for _, targetID := range adjacency[node.ID] {
			action := workflow.NodeByID(targetID)
			if action == nil || !action.IsActionNode() {
				continue
			}

			actions = append(actions, action.DisplayLabel())
		}

		if matched {
			preview.WouldDispatch += len(actions)
		}

		preview.Triggers = append(preview.Triggers, TriggerPreview{
			NodeID:           node.ID,
			Label:            node.DisplayLabel(),
			SensorKey:        key,
			CurrentValue:     value,
			Operator:         trigger.Operator,
			Threshold:        trigger.Threshold,
			ThresholdMax:     trigger.ThresholdMax,
			WouldTrigger:     matched,
			ConnectedActions: actions,
		})
	}

	return preview, nil
}

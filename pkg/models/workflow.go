// Package models defines the core domain models for condition-triggered
// automation workflows over industrial sensor data.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft  WorkflowStatus = "draft"  // Editable, not evaluated
	WorkflowStatusActive WorkflowStatus = "active" // Evaluated on every tick
	WorkflowStatusPaused WorkflowStatus = "paused" // Kept, not evaluated
	WorkflowStatusError  WorkflowStatus = "error"  // Reached via execution failure bookkeeping only
)

// Workflow is a named automation unit: a directed graph of sensor trigger
// nodes and notification action nodes.
type Workflow struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"      validate:"required"`
	Nodes       []*Node        `json:"nodes"`
	Edges       []*Edge        `json:"edges"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NodeByID returns the node with the given id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// TriggerNodes returns the workflow's non-action nodes in declaration order.
func (w *Workflow) TriggerNodes() []*Node {
	triggers := make([]*Node, 0, len(w.Nodes))

	for _, n := range w.Nodes {
		if !n.IsAction {
			triggers = append(triggers, n)
		}
	}

	return triggers
}

// AdjacencyMap builds source node id -> target node ids from the workflow's
// edges, preserving edge declaration order per source.
func (w *Workflow) AdjacencyMap() map[string][]string {
	adjacency := make(map[string][]string, len(w.Edges))

	for _, e := range w.Edges {
		adjacency[e.SourceID] = append(adjacency[e.SourceID], e.TargetID)
	}

	return adjacency
}

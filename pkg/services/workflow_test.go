package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/persistence"
	"github.com/nexuslab/vigil/pkg/persistence/file"
)

func newTestService(t *testing.T) (*WorkflowService, persistence.Store) {
	t.Helper()

	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewWorkflowService(store, logger), store
}

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:   "Overheat alert",
		Status: models.WorkflowStatusDraft,
		Nodes: []*models.Node{
			{
				ID:         "n1",
				Label:      "Centrifuge 01",
				Configured: true,
				Trigger: &models.TriggerConfig{
					EquipmentID: "Centrifuge_01",
					SensorType:  "temp",
					Operator:    models.OperatorGreaterThan,
					Threshold:   35,
					Severity:    models.SeverityWarning,
				},
			},
			{
				ID:         "n2",
				Label:      "Notify ops",
				IsAction:   true,
				Configured: true,
				Action: &models.ActionConfig{
					Channel:   "email",
					Recipient: "ops@example.com",
				},
			},
		},
		Edges: []*models.Edge{{ID: "e1", SourceID: "n1", TargetID: "n2"}},
	}
}

func TestSaveAssignsIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	workflow := validWorkflow()
	workflow.Status = ""

	saved, err := svc.Save(ctx, workflow)
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, models.WorkflowStatusDraft, saved.Status)
	assert.False(t, saved.CreatedAt.IsZero())

	stored, err := store.WorkflowByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Overheat alert", stored.Name)
}

func TestSaveRejectsNilAndUnnamed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Save(ctx, nil)
	require.ErrorIs(t, err, ErrWorkflowNil)

	workflow := validWorkflow()
	workflow.Name = "  "

	_, err = svc.Save(ctx, workflow)
	require.ErrorIs(t, err, ErrWorkflowNameRequired)
	assert.True(t, IsValidationError(err))
}

func TestSaveRejectsUnknownOperator(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	workflow := validWorkflow()
	workflow.Nodes[0].Trigger.Operator = "bogus"

	_, err := svc.Save(ctx, workflow)

	require.ErrorIs(t, err, ErrInvalidNodeConfig)
	assert.Contains(t, err.Error(), "n1")
}

func TestSaveRejectsConfiguredNodeWithoutConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	workflow := validWorkflow()
	workflow.Nodes[1].Action = nil

	_, err := svc.Save(ctx, workflow)

	require.ErrorIs(t, err, ErrInvalidNodeConfig)
}

func TestSaveAllowsPartialDraftNodes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	workflow := validWorkflow()
	workflow.Nodes[0].Configured = false
	workflow.Nodes[0].Trigger = &models.TriggerConfig{SensorType: "temp"}

	_, err := svc.Save(ctx, workflow)

	require.NoError(t, err)
}

func TestSaveActiveRequiresWiredTrigger(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	workflow := validWorkflow()
	workflow.Status = models.WorkflowStatusActive
	workflow.Edges = nil

	_, err := svc.Save(ctx, workflow)

	require.ErrorIs(t, err, ErrTriggerNodeRequired)
}

func TestUpdateStatusActivation(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	saved, err := svc.Save(ctx, validWorkflow())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, saved.ID, models.WorkflowStatusActive))

	stored, err := store.WorkflowByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusActive, stored.Status)
}

func TestUpdateStatusActivationRejectsUnwired(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	workflow := validWorkflow()
	workflow.Edges = nil

	saved, err := svc.Save(ctx, workflow)
	require.NoError(t, err)

	err = svc.UpdateStatus(ctx, saved.ID, models.WorkflowStatusActive)

	require.ErrorIs(t, err, ErrTriggerNodeRequired)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UpdateStatus(context.Background(), "any", "archived")

	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc, _ := newTestService(t)

	bogus := models.WorkflowStatus("archived")
	_, err := svc.List(context.Background(), &bogus)

	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Delete(context.Background(), "never-existed"))
}

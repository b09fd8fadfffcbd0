package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslab/vigil/pkg/feed"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/notification"
	"github.com/nexuslab/vigil/pkg/persistence"
	"github.com/nexuslab/vigil/pkg/persistence/file"
)

type stubChannel struct {
	name  string
	fail  bool
	sends []string
}

func (c *stubChannel) Name() string {
	return c.name
}

func (c *stubChannel) Send(_ context.Context, recipient string, _ notification.Message) notification.Result {
	c.sends = append(c.sends, recipient)

	if c.fail {
		return notification.Result{Success: false, Channel: c.name, Recipient: recipient, Error: "send failed"}
	}

	return notification.Result{Success: true, Channel: c.name, Recipient: recipient, MessageID: "stub_1"}
}

type recordingSink struct {
	notified []string
}

func (s *recordingSink) Notify(_ context.Context, equipmentID string) {
	s.notified = append(s.notified, equipmentID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) persistence.Store {
	t.Helper()

	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	return store
}

// emailWorkflow is one trigger (Centrifuge_01.temp > 35) wired to one email
// action.
func emailWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:     "wf-email",
		Name:   "Overheat alert",
		Status: models.WorkflowStatusActive,
		Nodes: []*models.Node{
			{
				ID:         "n1",
				Label:      "Centrifuge 01",
				Configured: true,
				Trigger: &models.TriggerConfig{
					EquipmentID: "Centrifuge_01",
					SensorType:  "temp",
					Operator:    models.OperatorGreaterThan,
					Threshold:   35.0,
					Unit:        "°C",
					Severity:    models.SeverityWarning,
				},
			},
			{
				ID:         "n2",
				Label:      "Notify ops",
				IsAction:   true,
				Configured: true,
				Action: &models.ActionConfig{
					Channel:   notification.ChannelEmail,
					Recipient: "ops@example.com",
					Severity:  models.SeverityWarning,
				},
			},
		},
		Edges: []*models.Edge{
			{ID: "e1", SourceID: "n1", TargetID: "n2"},
		},
	}
}

func newTestEngine(t *testing.T, store persistence.Store, channels ...notification.Channel) (*Engine, *feed.MemoryFeed) {
	t.Helper()

	logger := testLogger()

	if len(channels) == 0 {
		channels = []notification.Channel{&stubChannel{name: notification.ChannelEmail}}
	}

	dispatcher := notification.NewDispatcherWithChannels(logger, channels...)
	alertFeed := feed.NewMemoryFeed()

	return NewEngine(store, dispatcher, alertFeed, logger), alertFeed
}

func TestEvaluateAndTriggerDispatchesEmail(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	channel := &stubChannel{name: notification.ChannelEmail}
	eng, alertFeed := newTestEngine(t, store, channel)

	workflow := emailWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	results := eng.EvaluateAndTrigger(ctx, workflow, models.SensorSnapshot{"Centrifuge_01.temp": 40.0})

	require.Len(t, results, 1)
	assert.Equal(t, notification.ChannelEmail, results[0].ActionType)
	assert.Equal(t, "ops@example.com", results[0].Recipient)
	assert.True(t, results[0].Success)
	assert.Equal(t, []string{"ops@example.com"}, channel.sends)

	alerts, err := store.RecentAlerts(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertStatusSent, alerts[0].Status)
	assert.Equal(t, "wf-email", alerts[0].WorkflowID)

	entries, err := alertFeed.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Centrifuge 01", entries[0].Equipment)
	assert.InDelta(t, 40.0, entries[0].Value, 1e-9)
}

func TestEvaluateAndTriggerNoMatchNoDispatch(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	channel := &stubChannel{name: notification.ChannelEmail}
	eng, alertFeed := newTestEngine(t, store, channel)

	results := eng.EvaluateAndTrigger(ctx, emailWorkflow(), models.SensorSnapshot{"Centrifuge_01.temp": 20.0})

	assert.Empty(t, results)
	assert.Empty(t, channel.sends)

	alerts, err := store.RecentAlerts(ctx, 10, "")
	require.NoError(t, err)
	assert.Empty(t, alerts)

	entries, err := alertFeed.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEvaluateAndTriggerMissingSensorIsSkipped(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, testStore(t))

	results := eng.EvaluateAndTrigger(ctx, emailWorkflow(), models.SensorSnapshot{"Robot_02.vibration": 9.0})

	assert.Empty(t, results)
}

func TestEvaluateAndTriggerFansOutOncePerAction(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	email := &stubChannel{name: notification.ChannelEmail}
	webhook := &stubChannel{name: notification.ChannelWebhook}
	eng, _ := newTestEngine(t, store, email, webhook)

	workflow := emailWorkflow()
	workflow.Nodes = append(workflow.Nodes, &models.Node{
		ID:         "n3",
		Label:      "Post to pager",
		IsAction:   true,
		Configured: true,
		Action: &models.ActionConfig{
			Channel:   notification.ChannelWebhook,
			Recipient: "https://hooks.example.com/pager",
		},
	})
	workflow.Edges = append(workflow.Edges, &models.Edge{ID: "e2", SourceID: "n1", TargetID: "n3"})

	results := eng.EvaluateAndTrigger(ctx, workflow, models.SensorSnapshot{"Centrifuge_01.temp": 40.0})

	require.Len(t, results, 2)
	// Edge declaration order.
	assert.Equal(t, "n2", results[0].ActionNodeID)
	assert.Equal(t, "n3", results[1].ActionNodeID)
	assert.Len(t, email.sends, 1)
	assert.Len(t, webhook.sends, 1)
}

func TestEvaluateAndTriggerSiblingIsolation(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	email := &stubChannel{name: notification.ChannelEmail, fail: true}
	webhook := &stubChannel{name: notification.ChannelWebhook}
	eng, _ := newTestEngine(t, store, email, webhook)

	workflow := emailWorkflow()
	workflow.Nodes = append(workflow.Nodes, &models.Node{
		ID:         "n3",
		IsAction:   true,
		Configured: true,
		Action: &models.ActionConfig{
			Channel:   notification.ChannelWebhook,
			Recipient: "https://hooks.example.com/pager",
		},
	})
	workflow.Edges = append(workflow.Edges, &models.Edge{ID: "e2", SourceID: "n1", TargetID: "n3"})

	results := eng.EvaluateAndTrigger(ctx, workflow, models.SensorSnapshot{"Centrifuge_01.temp": 40.0})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, "send failed", results[0].Error)
	assert.True(t, results[1].Success)

	alerts, err := store.RecentAlerts(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
}

func TestEvaluateAndTriggerSkipsUnconfiguredAndInertNodes(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	email := &stubChannel{name: notification.ChannelEmail}
	eng, _ := newTestEngine(t, store, email)

	workflow := emailWorkflow()
	workflow.Nodes[0].Configured = false

	assert.Empty(t, eng.EvaluateAndTrigger(ctx, workflow, models.SensorSnapshot{"Centrifuge_01.temp": 40.0}))

	// Recipient-less action is inert: no result, no alert row.
	workflow = emailWorkflow()
	workflow.Nodes[1].Action.Recipient = ""

	assert.Empty(t, eng.EvaluateAndTrigger(ctx, workflow, models.SensorSnapshot{"Centrifuge_01.temp": 40.0}))
	assert.Empty(t, email.sends)

	alerts, err := store.RecentAlerts(ctx, 10, "")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestEvaluateAndTriggerNotifiesVisualSink(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t, testStore(t))

	sink := &recordingSink{}
	eng.WithVisualAlertSink(sink)

	workflow := emailWorkflow()
	workflow.Nodes[0].Trigger.SpecificEquipmentID = "centrifuge-3d-01"

	eng.EvaluateAndTrigger(ctx, workflow, models.SensorSnapshot{"Centrifuge_01.temp": 40.0})

	assert.Equal(t, []string{"centrifuge-3d-01"}, sink.notified)
}

func TestOnTickEvaluatesOnlyActiveWorkflows(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	channel := &stubChannel{name: notification.ChannelEmail}
	eng, _ := newTestEngine(t, store, channel)

	active := emailWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, active))

	paused := emailWorkflow()
	paused.ID = "wf-paused"
	paused.Status = models.WorkflowStatusPaused
	require.NoError(t, store.SaveWorkflow(ctx, paused))

	results := eng.OnTick(ctx, models.SensorSnapshot{"Centrifuge_01.temp": 40.0})

	require.Len(t, results, 1)
	assert.Len(t, channel.sends, 1)
}

func TestExecuteWorkflowSuccess(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	eng, _ := newTestEngine(t, store)

	workflow := emailWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	record, err := eng.ExecuteWorkflow(ctx, workflow.ID, "manual", models.SensorSnapshot{"Centrifuge_01.temp": 40.0})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusSuccess, record.Status)
	assert.Equal(t, 1, record.Result.ActionsExecuted)
	assert.NotNil(t, record.CompletedAt)

	executions, err := store.RecentExecutions(ctx, 10, workflow.ID)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, record.ID, executions[0].ID)
	assert.Equal(t, models.ExecutionStatusSuccess, executions[0].Status)
}

func TestExecuteWorkflowPartialOnFailedDispatch(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	eng, _ := newTestEngine(t, store, &stubChannel{name: notification.ChannelEmail, fail: true})

	workflow := emailWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	record, err := eng.ExecuteWorkflow(ctx, workflow.ID, "manual", models.SensorSnapshot{"Centrifuge_01.temp": 40.0})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusPartial, record.Status)

	alerts, err := store.RecentAlerts(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertStatusFailed, alerts[0].Status)
	assert.Equal(t, record.ID, alerts[0].ExecutionID)
}

func TestExecuteWorkflowUnknownID(t *testing.T) {
	eng, _ := newTestEngine(t, testStore(t))

	_, err := eng.ExecuteWorkflow(context.Background(), "missing", "manual", nil)

	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestExecuteWorkflowRequiresActiveStatus(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	eng, _ := newTestEngine(t, store)

	workflow := emailWorkflow()
	workflow.Status = models.WorkflowStatusDraft
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	_, err := eng.ExecuteWorkflow(ctx, workflow.ID, "manual", nil)

	require.ErrorIs(t, err, ErrWorkflowNotActive)
}

func TestTestWorkflowPreviewNoPersistence(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	channel := &stubChannel{name: notification.ChannelEmail}
	eng, alertFeed := newTestEngine(t, store, channel)

	workflow := emailWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	preview, err := eng.TestWorkflow(ctx, workflow.ID, models.SensorSnapshot{"Centrifuge_01.temp": 50.0})
	require.NoError(t, err)

	require.Len(t, preview.Triggers, 1)
	assert.True(t, preview.Triggers[0].WouldTrigger)
	assert.InDelta(t, 50.0, preview.Triggers[0].CurrentValue, 1e-9)
	assert.Equal(t, []string{"Notify ops"}, preview.Triggers[0].ConnectedActions)
	assert.Equal(t, 1, preview.WouldDispatch)

	// Dry run: nothing dispatched, nothing persisted.
	assert.Empty(t, channel.sends)

	alerts, err := store.RecentAlerts(ctx, 10, "")
	require.NoError(t, err)
	assert.Empty(t, alerts)

	executions, err := store.RecentExecutions(ctx, 10, "")
	require.NoError(t, err)
	assert.Empty(t, executions)

	entries, err := alertFeed.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTestWorkflowMissingMockKeyEvaluatesZero(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	eng, _ := newTestEngine(t, store)

	workflow := emailWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	preview, err := eng.TestWorkflow(ctx, workflow.ID, models.SensorSnapshot{"Robot_02.vibration": 1.0})
	require.NoError(t, err)

	require.Len(t, preview.Triggers, 1)
	assert.False(t, preview.Triggers[0].WouldTrigger)
	assert.Zero(t, preview.Triggers[0].CurrentValue)
}

func TestTestWorkflowGeneratesFixtureWhenNoMockData(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	eng, _ := newTestEngine(t, store)
	eng.WithFixtureGenerator(NewSeededFixtureGenerator(1))

	workflow := emailWorkflow()
	require.NoError(t, store.SaveWorkflow(ctx, workflow))

	preview, err := eng.TestWorkflow(ctx, workflow.ID, nil)
	require.NoError(t, err)

	require.Len(t, preview.Triggers, 1)
	assert.Contains(t, preview.SensorData, "Centrifuge_01.temp")
}

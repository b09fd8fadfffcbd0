package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enginepkg "github.com/nexuslab/vigil/pkg/engine"
	"github.com/nexuslab/vigil/pkg/feed"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/notification"
	"github.com/nexuslab/vigil/pkg/persistence/file"
	"github.com/nexuslab/vigil/pkg/services"
	"github.com/nexuslab/vigil/pkg/web"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	alertFeed := feed.NewMemoryFeed()
	dispatcher := notification.NewDispatcher(notification.Config{MockMode: true}, logger)
	eng := enginepkg.NewEngine(store, dispatcher, alertFeed, logger)
	workflowService := services.NewWorkflowService(store, logger)

	handlers := web.NewAPIHandlers(workflowService, eng, store, alertFeed,
		validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	web.RegisterRoutes(app, handlers)

	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func saveRequest() web.SaveWorkflowRequest {
	return web.SaveWorkflowRequest{
		Name:        "Overheat alert",
		Description: "Email ops when the centrifuge runs hot",
		Status:      models.WorkflowStatusDraft,
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

func createWorkflow(t *testing.T, app *fiber.App) models.Workflow {
	t.Helper()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/", saveRequest()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow
	decodeBody(t, resp, &created)

	return created
}

func TestCreateAndGetWorkflow(t *testing.T) {
	app := setupTestApp(t)

	created := createWorkflow(t, app)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Workflow
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
	require.Len(t, fetched.Nodes, 2)
	assert.Equal(t, "Centrifuge_01", fetched.Nodes[0].Trigger.EquipmentID)
}

func TestCreateWorkflowRejectsShortName(t *testing.T) {
	app := setupTestApp(t)

	req := saveRequest()
	req.Name = "ab"

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/", req))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflowNotFound(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListWorkflowsWithStatusFilter(t *testing.T) {
	app := setupTestApp(t)
	createWorkflow(t, app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workflows/?status=draft", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &list)
	assert.Equal(t, 1, list.Count)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/workflows/?status=active", nil))
	require.NoError(t, err)

	decodeBody(t, resp, &list)
	assert.Zero(t, list.Count)
}

func TestUpdateWorkflowStatusAndExecute(t *testing.T) {
	app := setupTestApp(t)
	created := createWorkflow(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/workflows/"+created.ID+"/status",
		web.UpdateStatusRequest{Status: models.WorkflowStatusActive}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/execute",
		web.ExecuteWorkflowRequest{SensorData: models.SensorSnapshot{"Centrifuge_01.temp": 40.0}}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record models.ExecutionRecord
	decodeBody(t, resp, &record)
	assert.Equal(t, models.ExecutionStatusSuccess, record.Status)
	assert.Equal(t, 1, record.Result.ActionsExecuted)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID+"/executions", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var executions struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &executions)
	assert.Equal(t, 1, executions.Count)
}

func TestExecuteWorkflowNotActiveConflict(t *testing.T) {
	app := setupTestApp(t)
	created := createWorkflow(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/execute",
		web.ExecuteWorkflowRequest{SensorData: models.SensorSnapshot{}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTestWorkflowPreview(t *testing.T) {
	app := setupTestApp(t)
	created := createWorkflow(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/test",
		web.TestWorkflowRequest{SensorData: models.SensorSnapshot{"Centrifuge_01.temp": 50.0}}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview enginepkg.Preview
	decodeBody(t, resp, &preview)
	require.Len(t, preview.Triggers, 1)
	assert.True(t, preview.Triggers[0].WouldTrigger)
	assert.Equal(t, []string{"Notify ops"}, preview.Triggers[0].ConnectedActions)
}

func TestDeleteWorkflow(t *testing.T) {
	app := setupTestApp(t)
	created := createWorkflow(t, app)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/workflows/"+created.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecentAlertsAndFeedAfterExecution(t *testing.T) {
	app := setupTestApp(t)
	created := createWorkflow(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/workflows/"+created.ID+"/status",
		web.UpdateStatusRequest{Status: models.WorkflowStatusActive}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/workflows/"+created.ID+"/execute",
		web.ExecuteWorkflowRequest{SensorData: models.SensorSnapshot{"Centrifuge_01.temp": 40.0}}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/alerts/recent", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts struct {
		Count  int                    `json:"count"`
		Alerts []models.AlertLogEntry `json:"alerts"`
	}
	decodeBody(t, resp, &alerts)
	require.Equal(t, 1, alerts.Count)
	assert.Equal(t, models.AlertStatusSent, alerts.Alerts[0].Status)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/alerts/feed", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var feedResp struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &feedResp)
	assert.Equal(t, 1, feedResp.Count)
}

func TestCatalogEndpoints(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/catalog/equipment-types", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types struct {
		EquipmentTypes []string `json:"equipment_types"`
	}
	decodeBody(t, resp, &types)
	assert.Contains(t, types.EquipmentTypes, "centrifuge")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/catalog/sensors/centrifuge", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sensors struct {
		Sensors []map[string]any `json:"sensors"`
	}
	decodeBody(t, resp, &sensors)
	assert.Len(t, sensors.Sensors, 3)
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

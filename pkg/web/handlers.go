package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/nexuslab/vigil/pkg/catalog"
	enginepkg "github.com/nexuslab/vigil/pkg/engine"
	"github.com/nexuslab/vigil/pkg/feed"
	"github.com/nexuslab/vigil/pkg/models"
	"github.com/nexuslab/vigil/pkg/persistence"
	"github.com/nexuslab/vigil/pkg/services"
)

const defaultListLimit = 20

type APIHandlers struct {
	workflowService *services.WorkflowService
	engine          *enginepkg.Engine
	store           persistence.Store
	alertFeed       feed.Feed
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.WorkflowService,
	engine *enginepkg.Engine,
	store persistence.Store,
	alertFeed feed.Feed,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		engine:          engine,
		store:           store,
		alertFeed:       alertFeed,
		validator:       validator,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	var status *models.WorkflowStatus

	if statusStr := c.Query("status"); statusStr != "" {
		s := models.WorkflowStatus(statusStr)
		status = &s
	}

	workflows, err := h.workflowService.List(c.Context(), status)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.Get(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Save(c.Context(), req.toWorkflow(""))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateWorkflow replaces the identified workflow wholesale; nodes, edges and
// status are rewritten on every save.
func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	existing, err := h.workflowService.Get(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	var req SaveWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := req.toWorkflow(id)
	workflow.CreatedAt = existing.CreatedAt

	updated, err := h.workflowService.Save(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) UpdateWorkflowStatus(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.workflowService.UpdateStatus(c.Context(), id, req.Status); err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"id": id, "status": req.Status})
}

// ExecuteWorkflow runs one audited batch execution.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	triggeredBy := req.TriggeredBy
	if triggeredBy == "" {
		triggeredBy = "api"
	}

	record, err := h.engine.ExecuteWorkflow(c.Context(), id, triggeredBy, req.SensorData)
	if err != nil && record == nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

// TestWorkflow previews trigger evaluation without dispatching or persisting.
func (h *APIHandlers) TestWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req TestWorkflowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	preview, err := h.engine.TestWorkflow(c.Context(), id, req.SensorData)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(preview)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	executions, err := h.store.RecentExecutions(c.Context(), h.limit(c), c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions, "count": len(executions)})
}

func (h *APIHandlers) GetRecentAlerts(c fiber.Ctx) error {
	alerts, err := h.store.RecentAlerts(c.Context(), h.limit(c), c.Query("action_type"))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"alerts": alerts, "count": len(alerts)})
}

// GetAlertFeed returns the bounded live feed, most recent first.
func (h *APIHandlers) GetAlertFeed(c fiber.Ctx) error {
	entries, err := h.alertFeed.Recent(c.Context(), h.limit(c))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"feed": entries, "count": len(entries)})
}

func (h *APIHandlers) GetEquipmentTypes(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"equipment_types": catalog.EquipmentTypes()})
}

func (h *APIHandlers) GetSensorDefinitions(c fiber.Ctx) error {
	equipmentType := c.Params("type")
	if equipmentType == "" {
		return badRequest(c, "Equipment type is required")
	}

	return c.JSON(fiber.Map{
		"equipment_type": equipmentType,
		"sensors":        catalog.SensorDefinitions(equipmentType),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"store": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// RegisterRoutes mounts the REST surface on the app.
func RegisterRoutes(app *fiber.App, h *APIHandlers) {
	w := app.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Put("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Patch("/:id/status", h.UpdateWorkflowStatus)
	w.Post("/:id/execute", h.ExecuteWorkflow)
	w.Post("/:id/test", h.TestWorkflow)
	w.Get("/:id/executions", h.GetWorkflowExecutions)

	app.Get("/alerts/recent", h.GetRecentAlerts)
	app.Get("/alerts/feed", h.GetAlertFeed)

	catalogGroup := app.Group("/catalog")
	catalogGroup.Get("/equipment-types", h.GetEquipmentTypes)
	catalogGroup.Get("/sensors/:type", h.GetSensorDefinitions)

	app.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) limit(c fiber.Ctx) int {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultListLimit
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return defaultListLimit
	}

	return limit
}

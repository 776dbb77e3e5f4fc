package handlers

import (
	"croptask-service/internal/repository"
	"croptask-service/internal/services"
	"croptask-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// AutomationHandler exposes the automated task views and a manual trigger for
// the scheduling tick.
type AutomationHandler struct {
	taskGenService *services.TaskGenerationService
	taskRepo       *repository.AutomatedTaskRepository
	farmTaskRepo   *repository.FarmTaskRepository
	archiver       *services.RunReportArchiver
}

func NewAutomationHandler(
	taskGenService *services.TaskGenerationService,
	taskRepo *repository.AutomatedTaskRepository,
	farmTaskRepo *repository.FarmTaskRepository,
	archiver *services.RunReportArchiver,
) *AutomationHandler {
	return &AutomationHandler{
		taskGenService: taskGenService,
		taskRepo:       taskRepo,
		farmTaskRepo:   farmTaskRepo,
		archiver:       archiver,
	}
}

func (h *AutomationHandler) RegisterRoutes(app *fiber.App) {
	gr := app.Group("croptask/protected/api/v1")

	gr.Get("/plantings/:id/automated-tasks", h.ListAutomatedTasks)
	gr.Get("/plantings/:id/farm-tasks", h.ListFarmTasks)
	gr.Post("/automation/process-scheduled", h.ProcessScheduled)
}

func (h *AutomationHandler) ListAutomatedTasks(c fiber.Ctx) error {
	plantingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid planting id")
	}

	tasks, err := h.taskRepo.GetByPlantingID(c.Context(), plantingID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(tasks))
}

func (h *AutomationHandler) ListFarmTasks(c fiber.Ctx) error {
	plantingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid planting id")
	}

	tasks, err := h.farmTaskRepo.GetByPlantingID(c.Context(), plantingID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(tasks))
}

// ProcessScheduled runs one scheduling pass on demand, outside the hourly
// cadence. The pass is idempotent so an extra trigger is harmless.
func (h *AutomationHandler) ProcessScheduled(c fiber.Ctx) error {
	result, err := h.taskGenService.ProcessScheduledTasks(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	h.archiver.ArchiveTaskTick(c.Context(), result)
	return c.JSON(utils.CreateSuccessResponse(result))
}

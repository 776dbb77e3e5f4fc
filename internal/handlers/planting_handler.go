package handlers

import (
	"context"
	"errors"

	"croptask-service/internal/models"
	"croptask-service/internal/services"
	"croptask-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type PlantingHandler struct {
	plantingService *services.PlantingService
	stageService    *services.StageProgressionService
}

func NewPlantingHandler(plantingService *services.PlantingService, stageService *services.StageProgressionService) *PlantingHandler {
	return &PlantingHandler{
		plantingService: plantingService,
		stageService:    stageService,
	}
}

func (h *PlantingHandler) RegisterRoutes(app *fiber.App) {
	gr := app.Group("croptask/protected/api/v1")

	gr.Post("/plantings", h.CreatePlanting)
	gr.Get("/plantings/:id", h.GetPlanting)
	gr.Get("/plantings/:id/stages", h.GetStageProgression)
	gr.Post("/plantings/:id/harvest", h.MarkHarvested)

	gr.Post("/planting-stages/:id/start", h.StartStage)
	gr.Post("/planting-stages/:id/complete", h.CompleteStage)
	gr.Post("/planting-stages/:id/delay", h.DelayStage)
	gr.Post("/planting-stages/:id/skip", h.SkipStage)
	gr.Put("/planting-stages/:id/progress", h.UpdateStageProgress)
}

func (h *PlantingHandler) CreatePlanting(c fiber.Ctx) error {
	ownerID := c.Get("X-User-ID")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID is required")
	}

	var req models.CreatePlantingRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.VarietyName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "variety_name is required")
	}

	planting, err := h.plantingService.CreatePlanting(c.Context(), ownerID, &req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(planting))
}

func (h *PlantingHandler) GetPlanting(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid planting id")
	}

	planting, err := h.plantingService.GetPlanting(c.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(planting))
}

func (h *PlantingHandler) GetStageProgression(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid planting id")
	}

	stages, err := h.plantingService.GetStageProgression(c.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(stages))
}

func (h *PlantingHandler) MarkHarvested(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid planting id")
	}

	if err := h.plantingService.MarkHarvested(c.Context(), id); err != nil {
		return stageTransitionError(err)
	}
	return c.JSON(utils.CreateSuccessResponse(fiber.Map{"harvested": true}))
}

func (h *PlantingHandler) StartStage(c fiber.Ctx) error {
	return h.stageAction(c, h.stageService.Start)
}

func (h *PlantingHandler) CompleteStage(c fiber.Ctx) error {
	return h.stageAction(c, h.stageService.Complete)
}

func (h *PlantingHandler) DelayStage(c fiber.Ctx) error {
	return h.stageAction(c, h.stageService.MarkDelayed)
}

func (h *PlantingHandler) SkipStage(c fiber.Ctx) error {
	return h.stageAction(c, h.stageService.Skip)
}

func (h *PlantingHandler) UpdateStageProgress(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid planting stage id")
	}

	var req models.UpdateStageProgressRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	stage, err := h.stageService.UpdateProgress(c.Context(), id, req.CompletionPercentage, req.Notes)
	if err != nil {
		return stageTransitionError(err)
	}
	return c.JSON(utils.CreateSuccessResponse(stage))
}

type stageTransition func(ctx context.Context, stageID uuid.UUID, notes *string) (*models.PlantingStage, error)

func (h *PlantingHandler) stageAction(c fiber.Ctx, action stageTransition) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid planting stage id")
	}

	// Notes are optional; an empty body is fine.
	var req models.StageActionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	stage, err := action(c.Context(), id, req.Notes)
	if err != nil {
		return stageTransitionError(err)
	}
	return c.JSON(utils.CreateSuccessResponse(stage))
}

// stageTransitionError maps service errors to HTTP statuses: invalid
// transitions are client errors, everything else is a 500.
func stageTransitionError(err error) error {
	if errors.Is(err, services.ErrInvalidStateTransition) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

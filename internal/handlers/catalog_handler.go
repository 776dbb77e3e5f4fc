package handlers

import (
	"croptask-service/internal/repository"
	"croptask-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// CatalogHandler exposes the read-only growth stage and template catalog.
type CatalogHandler struct {
	stageRepo    *repository.GrowthStageRepository
	templateRepo *repository.TaskTemplateRepository
}

func NewCatalogHandler(stageRepo *repository.GrowthStageRepository, templateRepo *repository.TaskTemplateRepository) *CatalogHandler {
	return &CatalogHandler{stageRepo: stageRepo, templateRepo: templateRepo}
}

func (h *CatalogHandler) RegisterRoutes(app *fiber.App) {
	gr := app.Group("croptask/public/api/v1")

	gr.Get("/growth-stages", h.ListStages)
	gr.Get("/growth-stages/:id/templates", h.ListStageTemplates)
}

func (h *CatalogHandler) ListStages(c fiber.Ctx) error {
	stages, err := h.stageRepo.GetAll(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(stages))
}

func (h *CatalogHandler) ListStageTemplates(c fiber.Ctx) error {
	stageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid growth stage id")
	}

	templates, err := h.templateRepo.GetActiveByStageID(c.Context(), stageID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(templates))
}

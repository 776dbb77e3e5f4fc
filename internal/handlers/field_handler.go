package handlers

import (
	"croptask-service/internal/models"
	"croptask-service/internal/repository"
	"croptask-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type FieldHandler struct {
	fieldRepo *repository.FieldRepository
}

func NewFieldHandler(fieldRepo *repository.FieldRepository) *FieldHandler {
	return &FieldHandler{fieldRepo: fieldRepo}
}

func (h *FieldHandler) RegisterRoutes(app *fiber.App) {
	gr := app.Group("croptask/protected/api/v1")

	gr.Post("/fields", h.CreateField)
	gr.Get("/fields", h.ListFields)
	gr.Get("/fields/:id", h.GetField)
	gr.Delete("/fields/:id", h.ArchiveField)
}

func (h *FieldHandler) CreateField(c fiber.Ctx) error {
	ownerID := c.Get("X-User-ID")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID is required")
	}

	var req models.CreateFieldRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.FieldName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "field_name is required")
	}
	if req.AreaSqm <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "area_sqm must be greater than 0")
	}

	field := &models.Field{
		OwnerID:        ownerID,
		FieldName:      req.FieldName,
		FieldCode:      req.FieldCode,
		CenterLocation: req.CenterLocation,
		AreaSqm:        req.AreaSqm,
		SoilType:       req.SoilType,
		HasIrrigation:  req.HasIrrigation,
		Status:         models.FieldActive,
	}
	if err := h.fieldRepo.Create(c.Context(), field); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(field))
}

func (h *FieldHandler) ListFields(c fiber.Ctx) error {
	ownerID := c.Get("X-User-ID")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID is required")
	}

	fields, err := h.fieldRepo.GetByOwner(c.Context(), ownerID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(fields))
}

func (h *FieldHandler) GetField(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid field id")
	}

	field, err := h.fieldRepo.GetByID(c.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(field))
}

func (h *FieldHandler) ArchiveField(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid field id")
	}

	if err := h.fieldRepo.Archive(c.Context(), id); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(fiber.Map{"archived": true}))
}

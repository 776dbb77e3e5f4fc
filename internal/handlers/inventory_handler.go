package handlers

import (
	"croptask-service/internal/models"
	"croptask-service/internal/repository"
	"croptask-service/internal/services"
	"croptask-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventoryRepo *repository.InventoryRepository
	alertRepo     *repository.AlertRepository
	alertService  *services.InventoryAlertService
}

func NewInventoryHandler(
	inventoryRepo *repository.InventoryRepository,
	alertRepo *repository.AlertRepository,
	alertService *services.InventoryAlertService,
) *InventoryHandler {
	return &InventoryHandler{
		inventoryRepo: inventoryRepo,
		alertRepo:     alertRepo,
		alertService:  alertService,
	}
}

func (h *InventoryHandler) RegisterRoutes(app *fiber.App) {
	gr := app.Group("croptask/protected/api/v1")

	gr.Post("/inventory", h.CreateItem)
	gr.Get("/inventory", h.ListItems)
	gr.Put("/inventory/:id/quantity", h.UpdateQuantity)
	gr.Get("/inventory-alerts", h.ListAlerts)
	gr.Post("/inventory-alerts/check", h.RunCheck)
}

func (h *InventoryHandler) CreateItem(c fiber.Ctx) error {
	ownerID := c.Get("X-User-ID")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID is required")
	}

	var req models.CreateInventoryItemRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if req.Quantity < 0 || req.ReorderLevel < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity and reorder_level must be non-negative")
	}
	if req.Unit == "" {
		return fiber.NewError(fiber.StatusBadRequest, "unit is required")
	}

	item := &models.InventoryItem{
		OwnerID:      ownerID,
		Name:         req.Name,
		Category:     req.Category,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ReorderLevel: req.ReorderLevel,
		ExpiryDate:   req.ExpiryDate,
	}
	if err := h.inventoryRepo.Create(c.Context(), item); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(item))
}

func (h *InventoryHandler) ListItems(c fiber.Ctx) error {
	ownerID := c.Get("X-User-ID")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID is required")
	}

	items, err := h.inventoryRepo.GetByOwner(c.Context(), ownerID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(items))
}

func (h *InventoryHandler) UpdateQuantity(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid item id")
	}

	var req struct {
		Quantity float64 `json:"quantity"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be non-negative")
	}

	if err := h.inventoryRepo.UpdateQuantity(c.Context(), id, req.Quantity); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(fiber.Map{"quantity": req.Quantity}))
}

func (h *InventoryHandler) ListAlerts(c fiber.Ctx) error {
	ownerID := c.Get("X-User-ID")
	if ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID is required")
	}

	alerts, err := h.alertRepo.GetActiveInventoryAlertsByOwner(c.Context(), ownerID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(alerts))
}

// RunCheck triggers the stock sweep on demand.
func (h *InventoryHandler) RunCheck(c fiber.Ctx) error {
	result, err := h.alertService.CheckAllItems(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(result))
}

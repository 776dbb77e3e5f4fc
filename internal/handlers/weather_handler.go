package handlers

import (
	"time"

	"croptask-service/internal/models"
	"croptask-service/internal/repository"
	"croptask-service/internal/services"
	"croptask-service/internal/utils"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// WeatherHandler ingests observations from the upstream weather service and
// exposes the derived alerts.
type WeatherHandler struct {
	observationRepo *repository.WeatherObservationRepository
	alertRepo       *repository.AlertRepository
	alertService    *services.WeatherAlertService
}

func NewWeatherHandler(
	observationRepo *repository.WeatherObservationRepository,
	alertRepo *repository.AlertRepository,
	alertService *services.WeatherAlertService,
) *WeatherHandler {
	return &WeatherHandler{
		observationRepo: observationRepo,
		alertRepo:       alertRepo,
		alertService:    alertService,
	}
}

func (h *WeatherHandler) RegisterRoutes(app *fiber.App) {
	// Ingestion is service-to-service; alerts are user-facing.
	app.Post("croptask/internal/api/v1/observations", h.IngestObservation)

	gr := app.Group("croptask/protected/api/v1")
	gr.Get("/fields/:id/weather-alerts", h.ListFieldAlerts)
	gr.Post("/fields/:id/weather-alerts/analyze", h.AnalyzeField)
	gr.Put("/weather-alerts/:id/deactivate", h.DeactivateAlert)
}

func (h *WeatherHandler) IngestObservation(c fiber.Ctx) error {
	var req models.IngestObservationRequest
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.FieldID == uuid.Nil {
		return fiber.NewError(fiber.StatusBadRequest, "field_id is required")
	}

	condition, err := models.ParseWeatherCondition(req.Condition)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Humidity < 0 || req.Humidity > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "humidity must be between 0 and 100")
	}
	if req.Rainfall < 0 || req.WindSpeed < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "rainfall and wind_speed must be non-negative")
	}

	recordedAt := time.Now()
	if req.RecordedAt > 0 {
		recordedAt = time.Unix(req.RecordedAt, 0)
	}

	obs := &models.WeatherObservation{
		FieldID:     req.FieldID,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		WindSpeed:   req.WindSpeed,
		Rainfall:    req.Rainfall,
		Condition:   condition,
		RecordedAt:  recordedAt,
	}
	if err := h.observationRepo.Create(c.Context(), obs); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(utils.CreateSuccessResponse(obs))
}

func (h *WeatherHandler) ListFieldAlerts(c fiber.Ctx) error {
	fieldID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid field id")
	}

	alerts, err := h.alertRepo.GetActiveWeatherAlertsByField(c.Context(), fieldID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(alerts))
}

// AnalyzeField runs the rule set against one field immediately.
func (h *WeatherHandler) AnalyzeField(c fiber.Ctx) error {
	fieldID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid field id")
	}

	alerts, err := h.alertService.GenerateAlertsForField(c.Context(), fieldID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(alerts))
}

func (h *WeatherHandler) DeactivateAlert(c fiber.Ctx) error {
	alertID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid alert id")
	}

	if err := h.alertRepo.DeactivateWeatherAlert(c.Context(), alertID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(utils.CreateSuccessResponse(fiber.Map{"deactivated": true}))
}

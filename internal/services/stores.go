package services

import (
	"context"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
)

// The engine and analyzers consume persistence through these narrow
// interfaces instead of reaching through entity relationships. The sqlx
// repositories satisfy them; tests substitute in-memory fakes.

type GrowthStageStore interface {
	GetAll(ctx context.Context) ([]models.GrowthStage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.GrowthStage, error)
}

type TaskTemplateStore interface {
	GetActiveByStageID(ctx context.Context, stageID uuid.UUID) ([]models.TaskTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.TaskTemplate, error)
}

type PlantingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Planting, error)
	GetActiveByFieldID(ctx context.Context, fieldID uuid.UUID) ([]models.Planting, error)
}

type PlantingStageStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PlantingStage, error)
	GetCurrentInProgress(ctx context.Context, plantingID uuid.UUID) (*models.PlantingStage, error)
	Update(ctx context.Context, ps *models.PlantingStage) error
}

type AutomatedTaskStore interface {
	Create(ctx context.Context, task *models.AutomatedTask) error
	GetDueScheduled(ctx context.Context, cutoff time.Time) ([]models.AutomatedTask, error)
	Update(ctx context.Context, task *models.AutomatedTask) error
}

type FarmTaskStore interface {
	Create(ctx context.Context, task *models.FarmTask) error
}

type FieldStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Field, error)
	GetActiveFieldIDs(ctx context.Context) ([]uuid.UUID, error)
}

// WeatherObservationStore supplies the weather data the engine gates on.
// LatestByField returns nil without error when a field has no observations;
// the engine fails open on that.
type WeatherObservationStore interface {
	LatestByField(ctx context.Context, fieldID uuid.UUID) (*models.WeatherObservation, error)
	WindowByField(ctx context.Context, fieldID uuid.UUID, from, to time.Time) ([]models.WeatherObservation, error)
}

type AlertStore interface {
	CreateWeatherAlert(ctx context.Context, alert *models.WeatherAlert) error
	HasRecentActiveWeatherAlert(ctx context.Context, fieldID uuid.UUID, plantingID *uuid.UUID, alertType models.WeatherAlertType, since time.Time) (bool, error)
	CreateInventoryAlert(ctx context.Context, alert *models.InventoryAlert) error
	HasRecentActiveInventoryAlert(ctx context.Context, itemID uuid.UUID, alertType models.InventoryAlertType, since time.Time) (bool, error)
}

type InventoryStore interface {
	GetAll(ctx context.Context) ([]models.InventoryItem, error)
}

// AlertPublisher fans created alerts out to the notification queue. A nil
// publisher disables fan-out.
type AlertPublisher interface {
	PublishWeatherAlert(ctx context.Context, alert *models.WeatherAlert) error
	PublishInventoryAlert(ctx context.Context, alert *models.InventoryAlert) error
}

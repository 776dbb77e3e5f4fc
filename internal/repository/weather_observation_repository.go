package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type WeatherObservationRepository struct {
	db *sqlx.DB
}

func NewWeatherObservationRepository(db *sqlx.DB) *WeatherObservationRepository {
	return &WeatherObservationRepository{db: db}
}

func (r *WeatherObservationRepository) Create(ctx context.Context, obs *models.WeatherObservation) error {
	if obs.ID == uuid.Nil {
		obs.ID = uuid.New()
	}
	obs.CreatedAt = time.Now()

	query := `
		INSERT INTO weather_observations (
			id, field_id, temperature, humidity, wind_speed,
			rainfall, condition, recorded_at, created_at
		) VALUES (
			:id, :field_id, :temperature, :humidity, :wind_speed,
			:rainfall, :condition, :recorded_at, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, obs)
	if err != nil {
		slog.Error("Failed to create weather observation", "field_id", obs.FieldID, "error", err)
		return fmt.Errorf("failed to create weather observation: %w", err)
	}

	slog.Debug("Created weather observation",
		"id", obs.ID,
		"field_id", obs.FieldID,
		"condition", obs.Condition,
		"recorded_at", obs.RecordedAt)
	return nil
}

// LatestByField returns the most recent observation for a field, or nil when
// none exists. Absence of data is not an error at this layer; the engine
// fails open on it.
func (r *WeatherObservationRepository) LatestByField(ctx context.Context, fieldID uuid.UUID) (*models.WeatherObservation, error) {
	var obs models.WeatherObservation
	query := `
		SELECT id, field_id, temperature, humidity, wind_speed,
			rainfall, condition, recorded_at, created_at
		FROM weather_observations
		WHERE field_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &obs, query, fieldID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest observation: %w", err)
	}
	return &obs, nil
}

// WindowByField returns observations in [from, to] ordered oldest first, for
// rolling window analyses.
func (r *WeatherObservationRepository) WindowByField(ctx context.Context, fieldID uuid.UUID, from, to time.Time) ([]models.WeatherObservation, error) {
	var observations []models.WeatherObservation
	query := `
		SELECT id, field_id, temperature, humidity, wind_speed,
			rainfall, condition, recorded_at, created_at
		FROM weather_observations
		WHERE field_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC`

	if err := r.db.SelectContext(ctx, &observations, query, fieldID, from, to); err != nil {
		return nil, fmt.Errorf("failed to get observation window: %w", err)
	}

	slog.Debug("Loaded observation window",
		"field_id", fieldID,
		"from", from,
		"to", to,
		"count", len(observations))
	return observations, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// WEATHER OBSERVATIONS (TIME-SERIES)
// ============================================================================

// WeatherObservation is one time-stamped reading for a field, supplied by the
// external weather-ingestion service.
type WeatherObservation struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	FieldID     uuid.UUID        `json:"field_id" db:"field_id"`
	Temperature float64          `json:"temperature" db:"temperature"`
	Humidity    float64          `json:"humidity" db:"humidity"`
	WindSpeed   float64          `json:"wind_speed" db:"wind_speed"`
	Rainfall    float64          `json:"rainfall" db:"rainfall"`
	Condition   WeatherCondition `json:"condition" db:"condition"`
	RecordedAt  time.Time        `json:"recorded_at" db:"recorded_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// IsRainy reports whether the observation counts as a rainy day for rolling
// window analyses.
func (o *WeatherObservation) IsRainy() bool {
	return o.Condition == ConditionRainy || o.Condition == ConditionStormy || o.Rainfall > 0
}

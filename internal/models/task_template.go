package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// TASK TEMPLATE CATALOG
// ============================================================================

// WeatherRule is the suitability gate attached to a weather-dependent
// template. All fields are optional; absent fields impose no constraint and
// present constraints are ANDed together.
type WeatherRule struct {
	TemperatureMin     *float64           `json:"temperature_min,omitempty"`
	TemperatureMax     *float64           `json:"temperature_max,omitempty"`
	HumidityMin        *float64           `json:"humidity_min,omitempty"`
	HumidityMax        *float64           `json:"humidity_max,omitempty"`
	MaxWindSpeed       *float64           `json:"max_wind_speed,omitempty"`
	AvoidConditions    []WeatherCondition `json:"avoid_conditions,omitempty"`
	RequiredConditions []WeatherCondition `json:"required_conditions,omitempty"`
}

func (r *WeatherRule) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *WeatherRule) Scan(value any) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("WeatherRule: Scan failed, expected []byte but got %T", value)
	}
	return json.Unmarshal(b, r)
}

// TaskTemplate is a per-stage task blueprint. Templates are curated catalog
// data and read-only during scheduling.
type TaskTemplate struct {
	ID                 uuid.UUID    `json:"id" db:"id"`
	GrowthStageID      uuid.UUID    `json:"growth_stage_id" db:"growth_stage_id"`
	TaskType           TaskType     `json:"task_type" db:"task_type"`
	Title              string       `json:"title" db:"title"`
	Instructions       string       `json:"instructions" db:"instructions"`
	DaysFromStageStart int          `json:"days_from_stage_start" db:"days_from_stage_start"`
	EstimatedHours     float64      `json:"estimated_hours" db:"estimated_hours"`
	Priority           TaskPriority `json:"priority" db:"priority"`
	IsMandatory        bool         `json:"is_mandatory" db:"is_mandatory"`
	IsWeatherDependent bool         `json:"is_weather_dependent" db:"is_weather_dependent"`
	WeatherRule        *WeatherRule `json:"weather_rule,omitempty" db:"weather_rule"`
	IsActive           bool         `json:"is_active" db:"is_active"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
}

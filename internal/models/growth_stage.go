package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"croptask-service/internal/utils"

	"github.com/google/uuid"
)

// ============================================================================
// GROWTH STAGE CATALOG
// ============================================================================

// StageRequirements holds the per-stage environmental hints. Every bound is
// optional; a nil field means the stage imposes no expectation for it.
type StageRequirements struct {
	TemperatureMin *float64 `json:"temperature_min,omitempty"`
	TemperatureMax *float64 `json:"temperature_max,omitempty"`
	HumidityMin    *float64 `json:"humidity_min,omitempty"`
	HumidityMax    *float64 `json:"humidity_max,omitempty"`
	WaterDepthCm   *float64 `json:"water_depth_cm,omitempty"`
	NitrogenKgHa   *float64 `json:"nitrogen_kg_ha,omitempty"`
	PhosphorusKgHa *float64 `json:"phosphorus_kg_ha,omitempty"`
	PotassiumKgHa  *float64 `json:"potassium_kg_ha,omitempty"`
}

func (r StageRequirements) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *StageRequirements) Scan(value any) error {
	if value == nil {
		*r = StageRequirements{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("StageRequirements: Scan failed, expected []byte but got %T", value)
	}
	return json.Unmarshal(b, r)
}

// GrowthStage is an immutable catalog entry. Stages are seeded once at
// deployment and shared read-only by all plantings.
type GrowthStage struct {
	ID                  uuid.UUID         `json:"id" db:"id"`
	Name                string            `json:"name" db:"name"`
	Code                string            `json:"code" db:"code"`
	OrderSequence       int               `json:"order_sequence" db:"order_sequence"`
	TypicalDurationDays int               `json:"typical_duration_days" db:"typical_duration_days"`
	Requirements        StageRequirements `json:"requirements" db:"requirements"`
	CommonProblems      utils.StringList  `json:"common_problems" db:"common_problems"`
	Description         *string           `json:"description,omitempty" db:"description"`
	CreatedAt           time.Time         `json:"created_at" db:"created_at"`
}

// Stage codes with stage-specific alert behavior.
const (
	StageCodeLandPrep  = "LAND_PREP"
	StageCodeSeeding   = "SEEDING"
	StageCodeTillering = "TILLERING"
	StageCodeFlowering = "FLOWERING"
	StageCodeRipening  = "RIPENING"
	StageCodeHarvest   = "HARVEST"
)

package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// PLANTINGS AND STAGE PROGRESSION
// ============================================================================

type Planting struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	FieldID        uuid.UUID      `json:"field_id" db:"field_id"`
	OwnerID        string         `json:"owner_id" db:"owner_id"`
	VarietyName    string         `json:"variety_name" db:"variety_name"`
	Season         Season         `json:"season" db:"season"`
	PlantedAreaSqm float64        `json:"planted_area_sqm" db:"planted_area_sqm"`
	PlantingDate   *int64         `json:"planting_date,omitempty" db:"planting_date"`
	Status         PlantingStatus `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// PlantingStage records one planting's progress through one growth stage.
// At most one row exists per (planting_id, growth_stage_id) pair; the unique
// constraint lives in the schema and the repository enforces it on create.
type PlantingStage struct {
	ID                   uuid.UUID   `json:"id" db:"id"`
	PlantingID           uuid.UUID   `json:"planting_id" db:"planting_id"`
	GrowthStageID        uuid.UUID   `json:"growth_stage_id" db:"growth_stage_id"`
	Status               StageStatus `json:"status" db:"status"`
	StartedAt            *time.Time  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt          *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CompletionPercentage float64     `json:"completion_percentage" db:"completion_percentage"`
	Notes                *string     `json:"notes,omitempty" db:"notes"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at"`
}

// IsOverdue reports whether the stage has run past its typical duration.
// Completed stages are never overdue; a stage that has not started cannot be.
func (ps *PlantingStage) IsOverdue(stage *GrowthStage, now time.Time) bool {
	if ps.Status == StageCompleted || ps.StartedAt == nil {
		return false
	}
	deadline := ps.StartedAt.AddDate(0, 0, stage.TypicalDurationDays)
	return now.After(deadline)
}

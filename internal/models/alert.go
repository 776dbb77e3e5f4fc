package models

import (
	"time"

	"croptask-service/internal/utils"

	"github.com/google/uuid"
)

// ============================================================================
// DERIVED ALERTS
// ============================================================================

// WeatherAlert is a derived, expiring notification produced by evaluating
// observation data against threshold rules. PlantingID is set only for
// stage-specific alerts; field-level alerts leave it nil.
type WeatherAlert struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	FieldID         uuid.UUID        `json:"field_id" db:"field_id"`
	PlantingID      *uuid.UUID       `json:"planting_id,omitempty" db:"planting_id"`
	AlertType       WeatherAlertType `json:"alert_type" db:"alert_type"`
	Severity        AlertSeverity    `json:"severity" db:"severity"`
	Title           string           `json:"title" db:"title"`
	Message         string           `json:"message" db:"message"`
	Evidence        utils.JSONMap    `json:"evidence" db:"evidence"`
	Recommendations utils.StringList `json:"recommendations" db:"recommendations"`
	ExpiresAt       time.Time        `json:"expires_at" db:"expires_at"`
	IsActive        bool             `json:"is_active" db:"is_active"`
	IsRead          bool             `json:"is_read" db:"is_read"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}

type InventoryAlert struct {
	ID              uuid.UUID          `json:"id" db:"id"`
	ItemID          uuid.UUID          `json:"item_id" db:"item_id"`
	OwnerID         string             `json:"owner_id" db:"owner_id"`
	AlertType       InventoryAlertType `json:"alert_type" db:"alert_type"`
	Severity        AlertSeverity      `json:"severity" db:"severity"`
	Title           string             `json:"title" db:"title"`
	Message         string             `json:"message" db:"message"`
	Evidence        utils.JSONMap      `json:"evidence" db:"evidence"`
	Recommendations utils.StringList   `json:"recommendations" db:"recommendations"`
	ExpiresAt       time.Time          `json:"expires_at" db:"expires_at"`
	IsActive        bool               `json:"is_active" db:"is_active"`
	IsRead          bool               `json:"is_read" db:"is_read"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
}

// InventoryItem is the stock record the inventory analyzer evaluates.
type InventoryItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	Name         string    `json:"name" db:"name"`
	Category     *string   `json:"category,omitempty" db:"category"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	Unit         string    `json:"unit" db:"unit"`
	ReorderLevel float64   `json:"reorder_level" db:"reorder_level"`
	ExpiryDate   *int64    `json:"expiry_date,omitempty" db:"expiry_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// FIELD MANAGEMENT
// ============================================================================

type Field struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	OwnerID        string        `json:"owner_id" db:"owner_id"`
	FieldName      string        `json:"field_name" db:"field_name"`
	FieldCode      *string       `json:"field_code,omitempty" db:"field_code"`
	CenterLocation *GeoJSONPoint `json:"center_location,omitempty" db:"center_location"`
	AreaSqm        float64       `json:"area_sqm" db:"area_sqm"`
	SoilType       *string       `json:"soil_type,omitempty" db:"soil_type"`
	HasIrrigation  bool          `json:"has_irrigation" db:"has_irrigation"`
	Status         FieldStatus   `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

package models

import "github.com/google/uuid"

// ============================================================================
// REQUEST DTOS
// ============================================================================

type CreateFieldRequest struct {
	FieldName      string        `json:"field_name"`
	FieldCode      *string       `json:"field_code,omitempty"`
	CenterLocation *GeoJSONPoint `json:"center_location,omitempty"`
	AreaSqm        float64       `json:"area_sqm"`
	SoilType       *string       `json:"soil_type,omitempty"`
	HasIrrigation  bool          `json:"has_irrigation"`
}

type CreatePlantingRequest struct {
	FieldID        uuid.UUID `json:"field_id"`
	VarietyName    string    `json:"variety_name"`
	Season         Season    `json:"season"`
	PlantedAreaSqm float64   `json:"planted_area_sqm"`
	PlantingDate   *int64    `json:"planting_date,omitempty"`
}

// StageActionRequest carries the optional notes for start/complete/delay
// transitions on a planting stage.
type StageActionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// UpdateStageProgressRequest sets the manual completion percentage on an
// in-progress stage.
type UpdateStageProgressRequest struct {
	CompletionPercentage float64 `json:"completion_percentage"`
	Notes                *string `json:"notes,omitempty"`
}

// IngestObservationRequest is the payload posted by the external
// weather-ingestion service. Condition is validated against the closed enum
// before the record is stored.
type IngestObservationRequest struct {
	FieldID     uuid.UUID `json:"field_id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Rainfall    float64   `json:"rainfall"`
	Condition   string    `json:"condition"`
	RecordedAt  int64     `json:"recorded_at"`
}

type CreateInventoryItemRequest struct {
	Name         string  `json:"name"`
	Category     *string `json:"category,omitempty"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
	ExpiryDate   *int64  `json:"expiry_date,omitempty"`
}

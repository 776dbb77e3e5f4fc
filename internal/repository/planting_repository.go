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

type PlantingRepository struct {
	db *sqlx.DB
}

func NewPlantingRepository(db *sqlx.DB) *PlantingRepository {
	return &PlantingRepository{db: db}
}

func (r *PlantingRepository) Create(ctx context.Context, planting *models.Planting) error {
	if planting.ID == uuid.Nil {
		planting.ID = uuid.New()
	}
	now := time.Now()
	planting.CreatedAt = now
	planting.UpdatedAt = now
	if planting.Status == "" {
		planting.Status = models.PlantingActive
	}

	query := `
		INSERT INTO plantings (
			id, field_id, owner_id, variety_name, season,
			planted_area_sqm, planting_date, status, created_at, updated_at
		) VALUES (
			:id, :field_id, :owner_id, :variety_name, :season,
			:planted_area_sqm, :planting_date, :status, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, planting)
	if err != nil {
		slog.Error("Failed to create planting", "field_id", planting.FieldID, "error", err)
		return fmt.Errorf("failed to create planting: %w", err)
	}

	slog.Info("Created planting", "id", planting.ID, "field_id", planting.FieldID, "variety", planting.VarietyName)
	return nil
}

func (r *PlantingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Planting, error) {
	var planting models.Planting
	query := `
		SELECT id, field_id, owner_id, variety_name, season,
			planted_area_sqm, planting_date, status, created_at, updated_at
		FROM plantings
		WHERE id = $1`

	err := r.db.GetContext(ctx, &planting, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("planting not found")
		}
		return nil, fmt.Errorf("failed to get planting: %w", err)
	}
	return &planting, nil
}

func (r *PlantingRepository) GetByFieldID(ctx context.Context, fieldID uuid.UUID) ([]models.Planting, error) {
	var plantings []models.Planting
	query := `
		SELECT id, field_id, owner_id, variety_name, season,
			planted_area_sqm, planting_date, status, created_at, updated_at
		FROM plantings
		WHERE field_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &plantings, query, fieldID); err != nil {
		return nil, fmt.Errorf("failed to get plantings by field: %w", err)
	}
	return plantings, nil
}

// GetActiveByFieldID returns active plantings for a field, used by the alert
// analyzer to apply stage-critical overrides.
func (r *PlantingRepository) GetActiveByFieldID(ctx context.Context, fieldID uuid.UUID) ([]models.Planting, error) {
	var plantings []models.Planting
	query := `
		SELECT id, field_id, owner_id, variety_name, season,
			planted_area_sqm, planting_date, status, created_at, updated_at
		FROM plantings
		WHERE field_id = $1 AND status = 'active'
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &plantings, query, fieldID); err != nil {
		return nil, fmt.Errorf("failed to get active plantings by field: %w", err)
	}
	return plantings, nil
}

func (r *PlantingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PlantingStatus) error {
	query := `UPDATE plantings SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update planting status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("planting not found")
	}

	slog.Info("Updated planting status", "id", id, "status", status)
	return nil
}

// Delete removes a planting. Planting stages and automated tasks cascade at
// the schema level.
func (r *PlantingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plantings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete planting: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("planting not found")
	}

	slog.Info("Deleted planting", "id", id)
	return nil
}

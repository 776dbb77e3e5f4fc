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
	"github.com/lib/pq"
)

type PlantingStageRepository struct {
	db *sqlx.DB
}

func NewPlantingStageRepository(db *sqlx.DB) *PlantingStageRepository {
	return &PlantingStageRepository{db: db}
}

// Create inserts one (planting, growth stage) row. The schema carries a
// unique constraint on the pair; a violation is reported as a duplicate
// rather than a generic failure.
func (r *PlantingStageRepository) Create(ctx context.Context, ps *models.PlantingStage) error {
	if ps.ID == uuid.Nil {
		ps.ID = uuid.New()
	}
	now := time.Now()
	ps.CreatedAt = now
	ps.UpdatedAt = now
	if ps.Status == "" {
		ps.Status = models.StagePending
	}

	query := `
		INSERT INTO planting_stages (
			id, planting_id, growth_stage_id, status, started_at,
			completed_at, completion_percentage, notes, created_at, updated_at
		) VALUES (
			:id, :planting_id, :growth_stage_id, :status, :started_at,
			:completed_at, :completion_percentage, :notes, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, ps)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("planting stage already exists for planting %s and stage %s", ps.PlantingID, ps.GrowthStageID)
		}
		slog.Error("Failed to create planting stage", "planting_id", ps.PlantingID, "error", err)
		return fmt.Errorf("failed to create planting stage: %w", err)
	}

	slog.Info("Created planting stage", "id", ps.ID, "planting_id", ps.PlantingID, "growth_stage_id", ps.GrowthStageID)
	return nil
}

func (r *PlantingStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PlantingStage, error) {
	var ps models.PlantingStage
	query := `
		SELECT id, planting_id, growth_stage_id, status, started_at,
			completed_at, completion_percentage, notes, created_at, updated_at
		FROM planting_stages
		WHERE id = $1`

	err := r.db.GetContext(ctx, &ps, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("planting stage not found")
		}
		return nil, fmt.Errorf("failed to get planting stage: %w", err)
	}
	return &ps, nil
}

func (r *PlantingStageRepository) GetByPlantingAndStage(ctx context.Context, plantingID, growthStageID uuid.UUID) (*models.PlantingStage, error) {
	var ps models.PlantingStage
	query := `
		SELECT id, planting_id, growth_stage_id, status, started_at,
			completed_at, completion_percentage, notes, created_at, updated_at
		FROM planting_stages
		WHERE planting_id = $1 AND growth_stage_id = $2`

	err := r.db.GetContext(ctx, &ps, query, plantingID, growthStageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("planting stage not found")
		}
		return nil, fmt.Errorf("failed to get planting stage: %w", err)
	}
	return &ps, nil
}

func (r *PlantingStageRepository) GetByPlantingID(ctx context.Context, plantingID uuid.UUID) ([]models.PlantingStage, error) {
	var stages []models.PlantingStage
	query := `
		SELECT ps.id, ps.planting_id, ps.growth_stage_id, ps.status, ps.started_at,
			ps.completed_at, ps.completion_percentage, ps.notes, ps.created_at, ps.updated_at
		FROM planting_stages ps
		JOIN growth_stages gs ON gs.id = ps.growth_stage_id
		WHERE ps.planting_id = $1
		ORDER BY gs.order_sequence ASC`

	if err := r.db.SelectContext(ctx, &stages, query, plantingID); err != nil {
		return nil, fmt.Errorf("failed to get planting stages: %w", err)
	}
	return stages, nil
}

// GetCurrentInProgress returns the in-progress stage for a planting, or nil
// when no stage is active.
func (r *PlantingStageRepository) GetCurrentInProgress(ctx context.Context, plantingID uuid.UUID) (*models.PlantingStage, error) {
	var ps models.PlantingStage
	query := `
		SELECT id, planting_id, growth_stage_id, status, started_at,
			completed_at, completion_percentage, notes, created_at, updated_at
		FROM planting_stages
		WHERE planting_id = $1 AND status = 'in_progress'
		ORDER BY started_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &ps, query, plantingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current planting stage: %w", err)
	}
	return &ps, nil
}

func (r *PlantingStageRepository) Update(ctx context.Context, ps *models.PlantingStage) error {
	ps.UpdatedAt = time.Now()

	query := `
		UPDATE planting_stages SET
			status = :status,
			started_at = :started_at,
			completed_at = :completed_at,
			completion_percentage = :completion_percentage,
			notes = :notes,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, ps)
	if err != nil {
		slog.Error("Failed to update planting stage", "id", ps.ID, "error", err)
		return fmt.Errorf("failed to update planting stage: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("planting stage not found")
	}

	slog.Info("Updated planting stage", "id", ps.ID, "status", ps.Status)
	return nil
}

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FarmTaskRepository persists the concrete work records spawned for
// high-urgency ready tasks. Their lifecycle beyond creation belongs to the
// presentation layer.
type FarmTaskRepository struct {
	db *sqlx.DB
}

func NewFarmTaskRepository(db *sqlx.DB) *FarmTaskRepository {
	return &FarmTaskRepository{db: db}
}

func (r *FarmTaskRepository) Create(ctx context.Context, task *models.FarmTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = time.Now()
	if task.Status == "" {
		task.Status = "open"
	}

	query := `
		INSERT INTO farm_tasks (
			id, planting_id, task_type, title, instructions,
			priority, due_date, status, created_at
		) VALUES (
			:id, :planting_id, :task_type, :title, :instructions,
			:priority, :due_date, :status, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		slog.Error("Failed to create farm task", "planting_id", task.PlantingID, "error", err)
		return fmt.Errorf("failed to create farm task: %w", err)
	}

	slog.Info("Created farm task", "id", task.ID, "planting_id", task.PlantingID, "priority", task.Priority)
	return nil
}

func (r *FarmTaskRepository) GetByPlantingID(ctx context.Context, plantingID uuid.UUID) ([]models.FarmTask, error) {
	var tasks []models.FarmTask
	query := `
		SELECT id, planting_id, task_type, title, instructions,
			priority, due_date, status, created_at
		FROM farm_tasks
		WHERE planting_id = $1
		ORDER BY due_date ASC`

	if err := r.db.SelectContext(ctx, &tasks, query, plantingID); err != nil {
		return nil, fmt.Errorf("failed to get farm tasks by planting: %w", err)
	}
	return tasks, nil
}

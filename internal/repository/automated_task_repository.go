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

type AutomatedTaskRepository struct {
	db *sqlx.DB
}

func NewAutomatedTaskRepository(db *sqlx.DB) *AutomatedTaskRepository {
	return &AutomatedTaskRepository{db: db}
}

func (r *AutomatedTaskRepository) Create(ctx context.Context, task *models.AutomatedTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.AutomatedTaskScheduled
	}

	query := `
		INSERT INTO automated_tasks (
			id, planting_id, planting_stage_id, task_template_id, task_type,
			title, instructions, priority, scheduled_date, due_date, status,
			delay_reason, generated_task_id, completed_at, created_at, updated_at
		) VALUES (
			:id, :planting_id, :planting_stage_id, :task_template_id, :task_type,
			:title, :instructions, :priority, :scheduled_date, :due_date, :status,
			:delay_reason, :generated_task_id, :completed_at, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		slog.Error("Failed to create automated task", "planting_id", task.PlantingID, "error", err)
		return fmt.Errorf("failed to create automated task: %w", err)
	}

	slog.Info("Created automated task",
		"id", task.ID,
		"planting_id", task.PlantingID,
		"task_type", task.TaskType,
		"scheduled_date", task.ScheduledDate)
	return nil
}

func (r *AutomatedTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AutomatedTask, error) {
	var task models.AutomatedTask
	query := `
		SELECT id, planting_id, planting_stage_id, task_template_id, task_type,
			title, instructions, priority, scheduled_date, due_date, status,
			delay_reason, generated_task_id, completed_at, created_at, updated_at
		FROM automated_tasks
		WHERE id = $1`

	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("automated task not found")
		}
		return nil, fmt.Errorf("failed to get automated task: %w", err)
	}
	return &task, nil
}

// GetDueScheduled selects the tasks a tick should process: still in the
// scheduled state with a scheduled date at or before the cutoff. Tasks in
// ready, weather_delayed or terminal states are excluded here, which is what
// keeps repeated ticks from double-processing.
func (r *AutomatedTaskRepository) GetDueScheduled(ctx context.Context, cutoff time.Time) ([]models.AutomatedTask, error) {
	var tasks []models.AutomatedTask
	query := `
		SELECT id, planting_id, planting_stage_id, task_template_id, task_type,
			title, instructions, priority, scheduled_date, due_date, status,
			delay_reason, generated_task_id, completed_at, created_at, updated_at
		FROM automated_tasks
		WHERE status = 'scheduled' AND scheduled_date <= $1
		ORDER BY scheduled_date ASC`

	if err := r.db.SelectContext(ctx, &tasks, query, cutoff); err != nil {
		slog.Error("Failed to get due scheduled tasks", "error", err)
		return nil, fmt.Errorf("failed to get due scheduled tasks: %w", err)
	}

	slog.Debug("Loaded due scheduled tasks", "count", len(tasks), "cutoff", cutoff)
	return tasks, nil
}

func (r *AutomatedTaskRepository) GetByPlantingID(ctx context.Context, plantingID uuid.UUID) ([]models.AutomatedTask, error) {
	var tasks []models.AutomatedTask
	query := `
		SELECT id, planting_id, planting_stage_id, task_template_id, task_type,
			title, instructions, priority, scheduled_date, due_date, status,
			delay_reason, generated_task_id, completed_at, created_at, updated_at
		FROM automated_tasks
		WHERE planting_id = $1
		ORDER BY scheduled_date ASC`

	if err := r.db.SelectContext(ctx, &tasks, query, plantingID); err != nil {
		return nil, fmt.Errorf("failed to get automated tasks by planting: %w", err)
	}
	return tasks, nil
}

func (r *AutomatedTaskRepository) Update(ctx context.Context, task *models.AutomatedTask) error {
	task.UpdatedAt = time.Now()

	query := `
		UPDATE automated_tasks SET
			scheduled_date = :scheduled_date,
			due_date = :due_date,
			status = :status,
			delay_reason = :delay_reason,
			generated_task_id = :generated_task_id,
			completed_at = :completed_at,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		slog.Error("Failed to update automated task", "id", task.ID, "error", err)
		return fmt.Errorf("failed to update automated task: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("automated task not found")
	}

	slog.Debug("Updated automated task", "id", task.ID, "status", task.Status)
	return nil
}

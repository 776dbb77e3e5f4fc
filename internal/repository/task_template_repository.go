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

type TaskTemplateRepository struct {
	db *sqlx.DB
}

func NewTaskTemplateRepository(db *sqlx.DB) *TaskTemplateRepository {
	return &TaskTemplateRepository{db: db}
}

// Create inserts a template. Only the seed loader calls this.
func (r *TaskTemplateRepository) Create(ctx context.Context, tmpl *models.TaskTemplate) error {
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	tmpl.CreatedAt = time.Now()

	query := `
		INSERT INTO task_templates (
			id, growth_stage_id, task_type, title, instructions,
			days_from_stage_start, estimated_hours, priority,
			is_mandatory, is_weather_dependent, weather_rule, is_active, created_at
		) VALUES (
			:id, :growth_stage_id, :task_type, :title, :instructions,
			:days_from_stage_start, :estimated_hours, :priority,
			:is_mandatory, :is_weather_dependent, :weather_rule, :is_active, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, tmpl)
	if err != nil {
		slog.Error("Failed to create task template", "title", tmpl.Title, "error", err)
		return fmt.Errorf("failed to create task template %q: %w", tmpl.Title, err)
	}

	slog.Info("Created task template", "id", tmpl.ID, "stage_id", tmpl.GrowthStageID, "type", tmpl.TaskType)
	return nil
}

// GetActiveByStageID returns the active templates for one growth stage,
// ordered by scheduling offset ascending. This is the order the generation
// engine instantiates tasks in.
func (r *TaskTemplateRepository) GetActiveByStageID(ctx context.Context, stageID uuid.UUID) ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	query := `
		SELECT id, growth_stage_id, task_type, title, instructions,
			days_from_stage_start, estimated_hours, priority,
			is_mandatory, is_weather_dependent, weather_rule, is_active, created_at
		FROM task_templates
		WHERE growth_stage_id = $1 AND is_active = true
		ORDER BY days_from_stage_start ASC`

	if err := r.db.SelectContext(ctx, &templates, query, stageID); err != nil {
		slog.Error("Failed to get task templates by stage", "stage_id", stageID, "error", err)
		return nil, fmt.Errorf("failed to get task templates for stage %s: %w", stageID, err)
	}

	slog.Debug("Loaded task templates", "stage_id", stageID, "count", len(templates))
	return templates, nil
}

func (r *TaskTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TaskTemplate, error) {
	var tmpl models.TaskTemplate
	query := `
		SELECT id, growth_stage_id, task_type, title, instructions,
			days_from_stage_start, estimated_hours, priority,
			is_mandatory, is_weather_dependent, weather_rule, is_active, created_at
		FROM task_templates
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &tmpl, query, id); err != nil {
		return nil, fmt.Errorf("failed to get task template: %w", err)
	}
	return &tmpl, nil
}

func (r *TaskTemplateRepository) CountByStageID(ctx context.Context, stageID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM task_templates WHERE growth_stage_id = $1`
	if err := r.db.GetContext(ctx, &count, query, stageID); err != nil {
		return 0, fmt.Errorf("failed to count task templates: %w", err)
	}
	return count, nil
}

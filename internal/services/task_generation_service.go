package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
)

// renderContext carries the planting facts substituted into template text.
type renderContext struct {
	FieldName string
	Variety   string
	AreaSqm   float64
	Season    models.Season
}

// TickError records one failed item from a batch pass. The batch keeps
// processing the remaining items.
type TickError struct {
	ItemID  uuid.UUID `json:"item_id"`
	Message string    `json:"message"`
}

// TaskTickResult summarizes one scheduling pass over due tasks.
type TaskTickResult struct {
	StartedAt time.Time   `json:"started_at"`
	Processed int         `json:"processed"`
	Ready     int         `json:"ready"`
	Delayed   int         `json:"delayed"`
	Spawned   int         `json:"spawned"`
	Errors    []TickError `json:"errors,omitempty"`
}

// TaskGenerationService materializes task templates into dated automated
// tasks and advances them through the weather-gated readiness lifecycle.
type TaskGenerationService struct {
	templateRepo TaskTemplateStore
	taskRepo     AutomatedTaskStore
	farmTaskRepo FarmTaskStore
	plantingRepo PlantingStore
	fieldRepo    FieldStore
	weatherRepo  WeatherObservationStore

	// Tasks at or above this priority spawn a FarmTask when they become
	// ready. Configured through TASK_AUTOGEN_MIN_PRIORITY.
	autoSpawnMinPriority models.TaskPriority
}

func NewTaskGenerationService(
	templateRepo TaskTemplateStore,
	taskRepo AutomatedTaskStore,
	farmTaskRepo FarmTaskStore,
	plantingRepo PlantingStore,
	fieldRepo FieldStore,
	weatherRepo WeatherObservationStore,
	autoSpawnMinPriority models.TaskPriority,
) *TaskGenerationService {
	if !models.IsValidTaskPriority(autoSpawnMinPriority) {
		autoSpawnMinPriority = models.PriorityHigh
	}
	return &TaskGenerationService{
		templateRepo:         templateRepo,
		taskRepo:             taskRepo,
		farmTaskRepo:         farmTaskRepo,
		plantingRepo:         plantingRepo,
		fieldRepo:            fieldRepo,
		weatherRepo:          weatherRepo,
		autoSpawnMinPriority: autoSpawnMinPriority,
	}
}

// GenerateTasksForStage creates one scheduled task per active template of the
// stage's growth stage, in template offset order. Scheduled dates are offset
// from the stage's start; due dates trail scheduled dates by the fixed grace
// period.
func (s *TaskGenerationService) GenerateTasksForStage(ctx context.Context, ps *models.PlantingStage) ([]models.AutomatedTask, error) {
	planting, err := s.plantingRepo.GetByID(ctx, ps.PlantingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load planting for task generation: %w", err)
	}

	field, err := s.fieldRepo.GetByID(ctx, planting.FieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to load field for task generation: %w", err)
	}

	templates, err := s.templateRepo.GetActiveByStageID(ctx, ps.GrowthStageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task templates: %w", err)
	}

	start := time.Now()
	if ps.StartedAt != nil {
		start = *ps.StartedAt
	}

	rc := renderContext{
		FieldName: field.FieldName,
		Variety:   planting.VarietyName,
		AreaSqm:   planting.PlantedAreaSqm,
		Season:    planting.Season,
	}

	tasks := make([]models.AutomatedTask, 0, len(templates))
	for i := range templates {
		tmpl := &templates[i]
		scheduled := start.AddDate(0, 0, tmpl.DaysFromStageStart)
		task := models.AutomatedTask{
			PlantingID:      ps.PlantingID,
			PlantingStageID: ps.ID,
			TaskTemplateID:  tmpl.ID,
			TaskType:        tmpl.TaskType,
			Title:           renderTaskText(tmpl.Title, rc),
			Instructions:    renderInstructions(tmpl, rc),
			Priority:        tmpl.Priority,
			ScheduledDate:   scheduled,
			DueDate:         scheduled.AddDate(0, 0, models.DueDateGraceDays),
			Status:          models.AutomatedTaskScheduled,
		}

		if err := s.taskRepo.Create(ctx, &task); err != nil {
			return tasks, fmt.Errorf("failed to create task from template %s: %w", tmpl.ID, err)
		}
		tasks = append(tasks, task)
	}

	slog.Info("Generated automated tasks",
		"planting_stage_id", ps.ID,
		"planting_id", ps.PlantingID,
		"count", len(tasks))
	return tasks, nil
}

// ProcessScheduledTasks is the hourly tick: every scheduled task whose
// scheduled date has arrived is either promoted to ready or pushed back by a
// weather delay. Tasks already promoted are not selected again, so repeated
// ticks over an unchanged backlog are no-ops. Failures on one task are
// collected and do not stop the batch.
func (s *TaskGenerationService) ProcessScheduledTasks(ctx context.Context) (*TaskTickResult, error) {
	result := &TaskTickResult{StartedAt: time.Now()}

	due, err := s.taskRepo.GetDueScheduled(ctx, result.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load due tasks: %w", err)
	}

	for i := range due {
		task := &due[i]
		result.Processed++

		spawned, delayed, err := s.processDueTask(ctx, task)
		if err != nil {
			slog.Warn("Failed to process due task", "task_id", task.ID, "error", err)
			result.Errors = append(result.Errors, TickError{ItemID: task.ID, Message: err.Error()})
			continue
		}
		if delayed {
			result.Delayed++
		} else {
			result.Ready++
		}
		if spawned {
			result.Spawned++
		}
	}

	slog.Info("Processed scheduled tasks",
		"processed", result.Processed,
		"ready", result.Ready,
		"delayed", result.Delayed,
		"spawned", result.Spawned,
		"errors", len(result.Errors))
	return result, nil
}

func (s *TaskGenerationService) processDueTask(ctx context.Context, task *models.AutomatedTask) (spawned, delayed bool, err error) {
	tmpl, err := s.templateRepo.GetByID(ctx, task.TaskTemplateID)
	if err != nil {
		return false, false, fmt.Errorf("failed to load template: %w", err)
	}

	if tmpl.IsWeatherDependent && tmpl.WeatherRule != nil {
		planting, err := s.plantingRepo.GetByID(ctx, task.PlantingID)
		if err != nil {
			return false, false, fmt.Errorf("failed to load planting: %w", err)
		}

		obs, err := s.weatherRepo.LatestByField(ctx, planting.FieldID)
		if err != nil {
			return false, false, fmt.Errorf("failed to load latest observation: %w", err)
		}

		// No observation on record: fail open and let the task proceed
		// rather than stall field work on missing data.
		if obs != nil {
			if ok, reasons := EvaluateWeatherRule(tmpl.WeatherRule, obs); !ok {
				return false, true, s.delayTask(ctx, task, UnsuitabilityReason(reasons))
			}
		} else {
			slog.Debug("No weather observation for field, proceeding without gate",
				"task_id", task.ID, "field_id", planting.FieldID)
		}
	}

	return s.readyTask(ctx, task)
}

// readyTask promotes the task and spawns a FarmTask when the priority meets
// the auto-spawn policy.
func (s *TaskGenerationService) readyTask(ctx context.Context, task *models.AutomatedTask) (spawned, delayed bool, err error) {
	task.Status = models.AutomatedTaskReady

	if task.Priority.AtLeast(s.autoSpawnMinPriority) {
		farmTask := models.FarmTask{
			PlantingID:   task.PlantingID,
			TaskType:     task.TaskType,
			Title:        task.Title,
			Instructions: task.Instructions,
			Priority:     task.Priority,
			DueDate:      task.DueDate,
		}
		if err := s.farmTaskRepo.Create(ctx, &farmTask); err != nil {
			return false, false, fmt.Errorf("failed to spawn farm task: %w", err)
		}
		task.GeneratedTaskID = &farmTask.ID
		spawned = true
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return false, false, fmt.Errorf("failed to mark task ready: %w", err)
	}

	slog.Info("Task ready", "task_id", task.ID, "spawned", spawned)
	return spawned, false, nil
}

// delayTask pushes an unsuitable task forward by the grace period and returns
// it to the scheduled pool for re-evaluation.
func (s *TaskGenerationService) delayTask(ctx context.Context, task *models.AutomatedTask, reason string) error {
	task.Status = models.AutomatedTaskWeatherDelayed
	task.Reschedule(task.ScheduledDate.AddDate(0, 0, models.DueDateGraceDays), reason)

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return fmt.Errorf("failed to reschedule delayed task: %w", err)
	}

	slog.Info("Task weather-delayed",
		"task_id", task.ID,
		"new_scheduled_date", task.ScheduledDate,
		"reason", reason)
	return nil
}

// renderTaskText substitutes the planting's facts into template text. Only
// the known placeholders are recognized; unknown braces pass through.
func renderTaskText(text string, rc renderContext) string {
	replacer := strings.NewReplacer(
		"{field_name}", rc.FieldName,
		"{variety}", rc.Variety,
		"{area}", fmt.Sprintf("%.0f", rc.AreaSqm),
		"{season}", string(rc.Season),
	)
	return replacer.Replace(text)
}

// renderInstructions renders the template body and appends the seasonal
// guidance for the task type.
func renderInstructions(tmpl *models.TaskTemplate, rc renderContext) string {
	instructions := renderTaskText(tmpl.Instructions, rc)
	if note := seasonalNote(tmpl.TaskType, rc.Season); note != "" {
		instructions += "\n\n" + note
	}
	return instructions
}

// seasonalNote returns the advisory fragment for season-sensitive task types.
func seasonalNote(taskType models.TaskType, season models.Season) string {
	switch {
	case season == models.SeasonWet && taskType == models.TaskPestControl:
		return "Wet season note: inspect for heightened pest and fungal activity after rain; prefer application windows with at least a dry half-day."
	case season == models.SeasonDry && taskType == models.TaskWatering:
		return "Dry season note: irrigation demand is elevated; check water levels early morning and avoid midday evaporation losses."
	default:
		return ""
	}
}

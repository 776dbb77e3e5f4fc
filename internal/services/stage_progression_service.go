package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
)

// TaskGenerator is the hook the progression tracker uses to populate a stage
// with its scheduled tasks when the stage starts.
type TaskGenerator interface {
	GenerateTasksForStage(ctx context.Context, ps *models.PlantingStage) ([]models.AutomatedTask, error)
}

// StageProgressionService advances plantings through the growth stage
// lifecycle: pending -> in_progress -> completed, with delayed and skipped
// as side states. Starting a stage triggers task generation exactly once.
type StageProgressionService struct {
	stageRepo       PlantingStageStore
	growthStageRepo GrowthStageStore
	taskGenerator   TaskGenerator
}

func NewStageProgressionService(
	stageRepo PlantingStageStore,
	growthStageRepo GrowthStageStore,
	taskGenerator TaskGenerator,
) *StageProgressionService {
	return &StageProgressionService{
		stageRepo:       stageRepo,
		growthStageRepo: growthStageRepo,
		taskGenerator:   taskGenerator,
	}
}

// Start moves a stage from pending or delayed to in_progress, stamps
// started_at, and generates the stage's task schedule. A stage that is
// already in_progress, completed, or skipped rejects the transition, which
// is what guarantees generation runs at most once per stage.
func (s *StageProgressionService) Start(ctx context.Context, stageID uuid.UUID, notes *string) (*models.PlantingStage, error) {
	ps, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return nil, err
	}

	if ps.Status != models.StagePending && ps.Status != models.StageDelayed {
		return nil, fmt.Errorf("%w: cannot start stage in status %s", ErrInvalidStateTransition, ps.Status)
	}

	now := time.Now()
	ps.Status = models.StageInProgress
	ps.StartedAt = &now
	if notes != nil {
		ps.Notes = notes
	}

	if err := s.stageRepo.Update(ctx, ps); err != nil {
		return nil, err
	}

	slog.Info("Started planting stage",
		"planting_stage_id", ps.ID,
		"planting_id", ps.PlantingID,
		"growth_stage_id", ps.GrowthStageID)

	// Generation failure does not roll the stage back; the stage is started
	// and the failure is surfaced for retry through manual regeneration.
	tasks, err := s.taskGenerator.GenerateTasksForStage(ctx, ps)
	if err != nil {
		slog.Error("Task generation failed for started stage",
			"planting_stage_id", ps.ID,
			"error", err)
		return ps, fmt.Errorf("stage started but task generation failed: %w", err)
	}

	slog.Info("Generated tasks for stage", "planting_stage_id", ps.ID, "count", len(tasks))
	return ps, nil
}

// Complete moves an in_progress stage to completed, stamps completed_at, and
// forces completion to 100%.
func (s *StageProgressionService) Complete(ctx context.Context, stageID uuid.UUID, notes *string) (*models.PlantingStage, error) {
	ps, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return nil, err
	}

	if ps.Status != models.StageInProgress {
		return nil, fmt.Errorf("%w: cannot complete stage in status %s", ErrInvalidStateTransition, ps.Status)
	}

	now := time.Now()
	ps.Status = models.StageCompleted
	ps.CompletedAt = &now
	ps.CompletionPercentage = 100
	if notes != nil {
		ps.Notes = notes
	}

	if err := s.stageRepo.Update(ctx, ps); err != nil {
		return nil, err
	}

	slog.Info("Completed planting stage",
		"planting_stage_id", ps.ID,
		"planting_id", ps.PlantingID)
	return ps, nil
}

// MarkDelayed flags a pending or in_progress stage as delayed. An already
// started stage keeps its started_at so overdue detection still measures
// against the real start.
func (s *StageProgressionService) MarkDelayed(ctx context.Context, stageID uuid.UUID, notes *string) (*models.PlantingStage, error) {
	ps, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return nil, err
	}

	if ps.Status != models.StagePending && ps.Status != models.StageInProgress {
		return nil, fmt.Errorf("%w: cannot delay stage in status %s", ErrInvalidStateTransition, ps.Status)
	}

	ps.Status = models.StageDelayed
	if notes != nil {
		ps.Notes = notes
	}

	if err := s.stageRepo.Update(ctx, ps); err != nil {
		return nil, err
	}

	slog.Info("Marked planting stage delayed", "planting_stage_id", ps.ID)
	return ps, nil
}

// Skip marks a pending stage skipped without starting it.
func (s *StageProgressionService) Skip(ctx context.Context, stageID uuid.UUID, notes *string) (*models.PlantingStage, error) {
	ps, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return nil, err
	}

	if ps.Status != models.StagePending {
		return nil, fmt.Errorf("%w: cannot skip stage in status %s", ErrInvalidStateTransition, ps.Status)
	}

	ps.Status = models.StageSkipped
	if notes != nil {
		ps.Notes = notes
	}

	if err := s.stageRepo.Update(ctx, ps); err != nil {
		return nil, err
	}

	slog.Info("Skipped planting stage", "planting_stage_id", ps.ID)
	return ps, nil
}

// UpdateProgress records partial completion on an in_progress stage.
func (s *StageProgressionService) UpdateProgress(ctx context.Context, stageID uuid.UUID, percentage float64, notes *string) (*models.PlantingStage, error) {
	if percentage < 0 || percentage > 100 {
		return nil, fmt.Errorf("completion percentage must be between 0 and 100, got %.1f", percentage)
	}

	ps, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return nil, err
	}

	if ps.Status != models.StageInProgress {
		return nil, fmt.Errorf("%w: cannot update progress on stage in status %s", ErrInvalidStateTransition, ps.Status)
	}

	ps.CompletionPercentage = percentage
	if notes != nil {
		ps.Notes = notes
	}

	if err := s.stageRepo.Update(ctx, ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// IsStageOverdue checks the stage's elapsed time against the catalog's
// typical duration for its growth stage.
func (s *StageProgressionService) IsStageOverdue(ctx context.Context, ps *models.PlantingStage) (bool, error) {
	stage, err := s.growthStageRepo.GetByID(ctx, ps.GrowthStageID)
	if err != nil {
		return false, err
	}
	return ps.IsOverdue(stage, time.Now()), nil
}

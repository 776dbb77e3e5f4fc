package services

import (
	"context"
	"fmt"
	"log/slog"

	"croptask-service/internal/models"
	"croptask-service/internal/repository"

	"github.com/google/uuid"
)

// PlantingService handles planting lifecycle. Creating a planting also
// initializes its full stage progression: one pending row per catalog stage,
// so the tracker and analyzers always find a complete sequence.
type PlantingService struct {
	plantingRepo    *repository.PlantingRepository
	stageRepo       *repository.PlantingStageRepository
	growthStageRepo *repository.GrowthStageRepository
	fieldRepo       *repository.FieldRepository
}

func NewPlantingService(
	plantingRepo *repository.PlantingRepository,
	stageRepo *repository.PlantingStageRepository,
	growthStageRepo *repository.GrowthStageRepository,
	fieldRepo *repository.FieldRepository,
) *PlantingService {
	return &PlantingService{
		plantingRepo:    plantingRepo,
		stageRepo:       stageRepo,
		growthStageRepo: growthStageRepo,
		fieldRepo:       fieldRepo,
	}
}

func (s *PlantingService) CreatePlanting(ctx context.Context, ownerID string, req *models.CreatePlantingRequest) (*models.Planting, error) {
	field, err := s.fieldRepo.GetByID(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}
	if field.OwnerID != ownerID {
		return nil, fmt.Errorf("field %s does not belong to requesting owner", field.ID)
	}

	if !models.IsValidSeason(req.Season) {
		return nil, fmt.Errorf("unrecognized season %q", req.Season)
	}
	if req.PlantedAreaSqm <= 0 || req.PlantedAreaSqm > field.AreaSqm {
		return nil, fmt.Errorf("planted area %.0f sqm must be positive and within the field's %.0f sqm", req.PlantedAreaSqm, field.AreaSqm)
	}

	planting := &models.Planting{
		FieldID:        req.FieldID,
		OwnerID:        ownerID,
		VarietyName:    req.VarietyName,
		Season:         req.Season,
		PlantedAreaSqm: req.PlantedAreaSqm,
		PlantingDate:   req.PlantingDate,
		Status:         models.PlantingActive,
	}
	if err := s.plantingRepo.Create(ctx, planting); err != nil {
		return nil, err
	}

	stages, err := s.growthStageRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("planting created but stage initialization failed: %w", err)
	}
	for i := range stages {
		ps := &models.PlantingStage{
			PlantingID:    planting.ID,
			GrowthStageID: stages[i].ID,
			Status:        models.StagePending,
		}
		if err := s.stageRepo.Create(ctx, ps); err != nil {
			return nil, fmt.Errorf("planting created but stage initialization failed: %w", err)
		}
	}

	slog.Info("Initialized planting stage progression",
		"planting_id", planting.ID,
		"stages", len(stages))
	return planting, nil
}

func (s *PlantingService) GetPlanting(ctx context.Context, id uuid.UUID) (*models.Planting, error) {
	return s.plantingRepo.GetByID(ctx, id)
}

func (s *PlantingService) GetPlantingsByField(ctx context.Context, fieldID uuid.UUID) ([]models.Planting, error) {
	return s.plantingRepo.GetByFieldID(ctx, fieldID)
}

// GetStageProgression returns the planting's stages in catalog order.
func (s *PlantingService) GetStageProgression(ctx context.Context, plantingID uuid.UUID) ([]models.PlantingStage, error) {
	if _, err := s.plantingRepo.GetByID(ctx, plantingID); err != nil {
		return nil, err
	}
	return s.stageRepo.GetByPlantingID(ctx, plantingID)
}

// MarkHarvested closes out an active planting.
func (s *PlantingService) MarkHarvested(ctx context.Context, id uuid.UUID) error {
	planting, err := s.plantingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if planting.Status != models.PlantingActive {
		return fmt.Errorf("%w: cannot harvest planting in status %s", ErrInvalidStateTransition, planting.Status)
	}
	return s.plantingRepo.UpdateStatus(ctx, id, models.PlantingHarvested)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"croptask-service/internal/models"
	"croptask-service/internal/utils"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ============================================================================
// CATALOG SEED FILE
// ============================================================================

// CatalogFile mirrors the YAML seed document: the growth stage sequence with
// each stage's task templates nested under it.
type CatalogFile struct {
	GrowthStages []CatalogStage `yaml:"growth_stages"`
}

type CatalogStage struct {
	Name                string                `yaml:"name"`
	Code                string                `yaml:"code"`
	OrderSequence       int                   `yaml:"order_sequence"`
	TypicalDurationDays int                   `yaml:"typical_duration_days"`
	Description         string                `yaml:"description"`
	Requirements        CatalogRequirements   `yaml:"requirements"`
	CommonProblems      []string              `yaml:"common_problems"`
	TaskTemplates       []CatalogTaskTemplate `yaml:"task_templates"`
}

type CatalogRequirements struct {
	TemperatureMin *float64 `yaml:"temperature_min"`
	TemperatureMax *float64 `yaml:"temperature_max"`
	HumidityMin    *float64 `yaml:"humidity_min"`
	HumidityMax    *float64 `yaml:"humidity_max"`
	WaterDepthCm   *float64 `yaml:"water_depth_cm"`
	NitrogenKgHa   *float64 `yaml:"nitrogen_kg_ha"`
	PhosphorusKgHa *float64 `yaml:"phosphorus_kg_ha"`
	PotassiumKgHa  *float64 `yaml:"potassium_kg_ha"`
}

type CatalogTaskTemplate struct {
	TaskType           string              `yaml:"task_type"`
	Title              string              `yaml:"title"`
	Instructions       string              `yaml:"instructions"`
	DaysFromStageStart int                 `yaml:"days_from_stage_start"`
	EstimatedHours     float64             `yaml:"estimated_hours"`
	Priority           string              `yaml:"priority"`
	IsMandatory        bool                `yaml:"is_mandatory"`
	IsWeatherDependent bool                `yaml:"is_weather_dependent"`
	WeatherRule        *CatalogWeatherRule `yaml:"weather_rule"`
}

type CatalogWeatherRule struct {
	TemperatureMin     *float64 `yaml:"temperature_min"`
	TemperatureMax     *float64 `yaml:"temperature_max"`
	HumidityMin        *float64 `yaml:"humidity_min"`
	HumidityMax        *float64 `yaml:"humidity_max"`
	MaxWindSpeed       *float64 `yaml:"max_wind_speed"`
	AvoidConditions    []string `yaml:"avoid_conditions"`
	RequiredConditions []string `yaml:"required_conditions"`
}

// ============================================================================
// CATALOG SERVICE
// ============================================================================

// GrowthStageSeeder and TaskTemplateSeeder are the write side of the catalog
// repositories, used only during startup seeding.
type GrowthStageSeeder interface {
	Create(ctx context.Context, stage *models.GrowthStage) error
	GetByCode(ctx context.Context, code string) (*models.GrowthStage, error)
}

type TaskTemplateSeeder interface {
	Create(ctx context.Context, tmpl *models.TaskTemplate) error
	CountByStageID(ctx context.Context, stageID uuid.UUID) (int, error)
}

// LoadCatalogFile reads and parses the YAML seed document.
func LoadCatalogFile(path string) (*CatalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var catalog CatalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return &catalog, nil
}

// ValidateCatalog checks the seed document's structural invariants: unique
// non-empty stage codes, strictly increasing order sequence, positive
// durations, and recognized enum values throughout the templates.
func ValidateCatalog(catalog *CatalogFile) error {
	if len(catalog.GrowthStages) == 0 {
		return fmt.Errorf("%w: catalog has no growth stages", ErrCatalogInvalid)
	}

	seenCodes := make(map[string]bool)
	prevOrder := 0
	for i, stage := range catalog.GrowthStages {
		if stage.Code == "" {
			return fmt.Errorf("%w: stage %d has an empty code", ErrCatalogInvalid, i)
		}
		if stage.Name == "" {
			return fmt.Errorf("%w: stage %s has an empty name", ErrCatalogInvalid, stage.Code)
		}
		if seenCodes[stage.Code] {
			return fmt.Errorf("%w: duplicate stage code %s", ErrCatalogInvalid, stage.Code)
		}
		seenCodes[stage.Code] = true

		if stage.OrderSequence <= prevOrder {
			return fmt.Errorf("%w: stage %s order_sequence %d is not strictly increasing",
				ErrCatalogInvalid, stage.Code, stage.OrderSequence)
		}
		prevOrder = stage.OrderSequence

		if stage.TypicalDurationDays <= 0 {
			return fmt.Errorf("%w: stage %s has non-positive typical_duration_days %d",
				ErrCatalogInvalid, stage.Code, stage.TypicalDurationDays)
		}

		for j, tmpl := range stage.TaskTemplates {
			if err := validateCatalogTemplate(stage.Code, j, &tmpl); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateCatalogTemplate(stageCode string, index int, tmpl *CatalogTaskTemplate) error {
	if tmpl.Title == "" {
		return fmt.Errorf("%w: stage %s template %d has an empty title", ErrCatalogInvalid, stageCode, index)
	}
	if !models.IsValidTaskType(models.TaskType(tmpl.TaskType)) {
		return fmt.Errorf("%w: stage %s template %q has unknown task_type %q",
			ErrCatalogInvalid, stageCode, tmpl.Title, tmpl.TaskType)
	}
	if !models.IsValidTaskPriority(models.TaskPriority(tmpl.Priority)) {
		return fmt.Errorf("%w: stage %s template %q has unknown priority %q",
			ErrCatalogInvalid, stageCode, tmpl.Title, tmpl.Priority)
	}
	if tmpl.DaysFromStageStart < 0 {
		return fmt.Errorf("%w: stage %s template %q has negative days_from_stage_start",
			ErrCatalogInvalid, stageCode, tmpl.Title)
	}

	if tmpl.WeatherRule != nil {
		r := tmpl.WeatherRule
		if r.TemperatureMin != nil && r.TemperatureMax != nil && *r.TemperatureMin > *r.TemperatureMax {
			return fmt.Errorf("%w: stage %s template %q has temperature_min above temperature_max",
				ErrCatalogInvalid, stageCode, tmpl.Title)
		}
		if r.HumidityMin != nil && r.HumidityMax != nil && *r.HumidityMin > *r.HumidityMax {
			return fmt.Errorf("%w: stage %s template %q has humidity_min above humidity_max",
				ErrCatalogInvalid, stageCode, tmpl.Title)
		}
		for _, c := range append(append([]string{}, r.AvoidConditions...), r.RequiredConditions...) {
			if _, err := models.ParseWeatherCondition(c); err != nil {
				return fmt.Errorf("%w: stage %s template %q references unknown weather condition %q",
					ErrCatalogInvalid, stageCode, tmpl.Title, c)
			}
		}
	}
	return nil
}

// SeedCatalog validates the document and writes any missing stages and
// templates. Existing stages (matched by code) keep their identity; template
// seeding is skipped for a stage that already has templates, so re-running at
// startup is harmless.
func SeedCatalog(ctx context.Context, catalog *CatalogFile, stageRepo GrowthStageSeeder, templateRepo TaskTemplateSeeder) error {
	if err := ValidateCatalog(catalog); err != nil {
		return err
	}

	for _, cs := range catalog.GrowthStages {
		stage, err := stageRepo.GetByCode(ctx, cs.Code)
		if err != nil {
			// Missing stage: create it, then reload to pick up the ID the
			// ON CONFLICT path may have preserved.
			newStage := catalogStageToModel(&cs)
			if err := stageRepo.Create(ctx, newStage); err != nil {
				return err
			}
			stage, err = stageRepo.GetByCode(ctx, cs.Code)
			if err != nil {
				return fmt.Errorf("failed to reload seeded stage %s: %w", cs.Code, err)
			}
		}

		count, err := templateRepo.CountByStageID(ctx, stage.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			slog.Debug("Stage already has templates, skipping template seed",
				"code", cs.Code, "count", count)
			continue
		}

		for _, ct := range cs.TaskTemplates {
			tmpl := catalogTemplateToModel(stage, &ct)
			if err := templateRepo.Create(ctx, tmpl); err != nil {
				return err
			}
		}
		slog.Info("Seeded stage templates", "code", cs.Code, "templates", len(cs.TaskTemplates))
	}

	slog.Info("Catalog seed complete", "stages", len(catalog.GrowthStages))
	return nil
}

func catalogStageToModel(cs *CatalogStage) *models.GrowthStage {
	stage := &models.GrowthStage{
		Name:                cs.Name,
		Code:                cs.Code,
		OrderSequence:       cs.OrderSequence,
		TypicalDurationDays: cs.TypicalDurationDays,
		Requirements: models.StageRequirements{
			TemperatureMin: cs.Requirements.TemperatureMin,
			TemperatureMax: cs.Requirements.TemperatureMax,
			HumidityMin:    cs.Requirements.HumidityMin,
			HumidityMax:    cs.Requirements.HumidityMax,
			WaterDepthCm:   cs.Requirements.WaterDepthCm,
			NitrogenKgHa:   cs.Requirements.NitrogenKgHa,
			PhosphorusKgHa: cs.Requirements.PhosphorusKgHa,
			PotassiumKgHa:  cs.Requirements.PotassiumKgHa,
		},
		CommonProblems: utils.StringList(cs.CommonProblems),
	}
	if cs.Description != "" {
		desc := cs.Description
		stage.Description = &desc
	}
	return stage
}

func catalogTemplateToModel(stage *models.GrowthStage, ct *CatalogTaskTemplate) *models.TaskTemplate {
	tmpl := &models.TaskTemplate{
		GrowthStageID:      stage.ID,
		TaskType:           models.TaskType(ct.TaskType),
		Title:              ct.Title,
		Instructions:       ct.Instructions,
		DaysFromStageStart: ct.DaysFromStageStart,
		EstimatedHours:     ct.EstimatedHours,
		Priority:           models.TaskPriority(ct.Priority),
		IsMandatory:        ct.IsMandatory,
		IsWeatherDependent: ct.IsWeatherDependent,
		IsActive:           true,
	}
	if ct.WeatherRule != nil {
		tmpl.WeatherRule = &models.WeatherRule{
			TemperatureMin: ct.WeatherRule.TemperatureMin,
			TemperatureMax: ct.WeatherRule.TemperatureMax,
			HumidityMin:    ct.WeatherRule.HumidityMin,
			HumidityMax:    ct.WeatherRule.HumidityMax,
			MaxWindSpeed:   ct.WeatherRule.MaxWindSpeed,
		}
		for _, c := range ct.WeatherRule.AvoidConditions {
			tmpl.WeatherRule.AvoidConditions = append(tmpl.WeatherRule.AvoidConditions, models.WeatherCondition(c))
		}
		for _, c := range ct.WeatherRule.RequiredConditions {
			tmpl.WeatherRule.RequiredConditions = append(tmpl.WeatherRule.RequiredConditions, models.WeatherCondition(c))
		}
	}
	return tmpl
}

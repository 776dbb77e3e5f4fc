package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// SEEDER FAKES
// ============================================================================

type fakeStageSeeder struct {
	byCode map[string]*models.GrowthStage
}

func newFakeStageSeeder() *fakeStageSeeder {
	return &fakeStageSeeder{byCode: make(map[string]*models.GrowthStage)}
}

func (f *fakeStageSeeder) Create(_ context.Context, stage *models.GrowthStage) error {
	if stage.ID == uuid.Nil {
		stage.ID = uuid.New()
	}
	copied := *stage
	f.byCode[stage.Code] = &copied
	return nil
}

func (f *fakeStageSeeder) GetByCode(_ context.Context, code string) (*models.GrowthStage, error) {
	if stage, ok := f.byCode[code]; ok {
		return stage, nil
	}
	return nil, fmt.Errorf("growth stage not found")
}

type fakeTemplateSeeder struct {
	byStage map[uuid.UUID][]models.TaskTemplate
}

func newFakeTemplateSeeder() *fakeTemplateSeeder {
	return &fakeTemplateSeeder{byStage: make(map[uuid.UUID][]models.TaskTemplate)}
}

func (f *fakeTemplateSeeder) Create(_ context.Context, tmpl *models.TaskTemplate) error {
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	f.byStage[tmpl.GrowthStageID] = append(f.byStage[tmpl.GrowthStageID], *tmpl)
	return nil
}

func (f *fakeTemplateSeeder) CountByStageID(_ context.Context, stageID uuid.UUID) (int, error) {
	return len(f.byStage[stageID]), nil
}

// ============================================================================
// FIXTURE
// ============================================================================

func validCatalog() *CatalogFile {
	return &CatalogFile{
		GrowthStages: []CatalogStage{
			{
				Name:                "Land Preparation",
				Code:                models.StageCodeLandPrep,
				OrderSequence:       1,
				TypicalDurationDays: 14,
				TaskTemplates: []CatalogTaskTemplate{
					{
						TaskType:           string(models.TaskMaintenance),
						Title:              "Plow and level {field_name}",
						DaysFromStageStart: 0,
						Priority:           string(models.PriorityHigh),
						IsMandatory:        true,
					},
				},
			},
			{
				Name:                "Seeding",
				Code:                models.StageCodeSeeding,
				OrderSequence:       2,
				TypicalDurationDays: 10,
				TaskTemplates: []CatalogTaskTemplate{
					{
						TaskType:           string(models.TaskWatering),
						Title:              "Sow {variety} in flooded beds",
						DaysFromStageStart: 1,
						Priority:           string(models.PriorityMedium),
						IsWeatherDependent: true,
						WeatherRule: &CatalogWeatherRule{
							TemperatureMin:  floatPtr(18),
							TemperatureMax:  floatPtr(32),
							AvoidConditions: []string{"rainy", "stormy"},
						},
					},
				},
			},
		},
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

func TestValidateCatalog_ValidPasses(t *testing.T) {
	assert.NoError(t, ValidateCatalog(validCatalog()))
}

func TestValidateCatalog_EmptyRejected(t *testing.T) {
	err := ValidateCatalog(&CatalogFile{})

	assert.ErrorIs(t, err, ErrCatalogInvalid)
}

func TestValidateCatalog_DuplicateCodeRejected(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[1].Code = catalog.GrowthStages[0].Code

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
	assert.Contains(t, err.Error(), "duplicate stage code")
}

func TestValidateCatalog_OrderMustIncrease(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[1].OrderSequence = 1

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
	assert.Contains(t, err.Error(), "order_sequence")
}

func TestValidateCatalog_NonPositiveDurationRejected(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[0].TypicalDurationDays = 0

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
}

func TestValidateCatalog_UnknownTaskTypeRejected(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[0].TaskTemplates[0].TaskType = "terraforming"

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
	assert.Contains(t, err.Error(), "task_type")
}

func TestValidateCatalog_UnknownPriorityRejected(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[0].TaskTemplates[0].Priority = "extreme"

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
}

func TestValidateCatalog_NegativeOffsetRejected(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[0].TaskTemplates[0].DaysFromStageStart = -1

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
}

func TestValidateCatalog_InvertedTemperatureRangeRejected(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[1].TaskTemplates[0].WeatherRule.TemperatureMin = floatPtr(35)

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
	assert.Contains(t, err.Error(), "temperature_min above temperature_max")
}

func TestValidateCatalog_UnknownConditionRejected(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[1].TaskTemplates[0].WeatherRule.AvoidConditions = []string{"hail"}

	err := ValidateCatalog(catalog)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
	assert.Contains(t, err.Error(), "hail")
}

// ============================================================================
// SEEDING
// ============================================================================

func TestSeedCatalog_CreatesStagesAndTemplates(t *testing.T) {
	stages := newFakeStageSeeder()
	templates := newFakeTemplateSeeder()

	err := SeedCatalog(context.Background(), validCatalog(), stages, templates)

	assert.NoError(t, err)
	assert.Len(t, stages.byCode, 2)

	seeding := stages.byCode[models.StageCodeSeeding]
	assert.NotNil(t, seeding)
	assert.Len(t, templates.byStage[seeding.ID], 1)

	tmpl := templates.byStage[seeding.ID][0]
	assert.True(t, tmpl.IsActive, "seeded templates start active")
	assert.NotNil(t, tmpl.WeatherRule)
	assert.Contains(t, tmpl.WeatherRule.AvoidConditions, models.ConditionRainy)
}

func TestSeedCatalog_RerunIsIdempotent(t *testing.T) {
	stages := newFakeStageSeeder()
	templates := newFakeTemplateSeeder()

	assert.NoError(t, SeedCatalog(context.Background(), validCatalog(), stages, templates))
	firstID := stages.byCode[models.StageCodeLandPrep].ID

	assert.NoError(t, SeedCatalog(context.Background(), validCatalog(), stages, templates))

	assert.Len(t, stages.byCode, 2)
	assert.Equal(t, firstID, stages.byCode[models.StageCodeLandPrep].ID, "rerun keeps existing stage identity")
	landPrep := stages.byCode[models.StageCodeLandPrep]
	assert.Len(t, templates.byStage[landPrep.ID], 1, "rerun must not duplicate templates")
}

func TestSeedCatalog_InvalidCatalogRejectedBeforeWrites(t *testing.T) {
	catalog := validCatalog()
	catalog.GrowthStages[0].Code = ""
	stages := newFakeStageSeeder()
	templates := newFakeTemplateSeeder()

	err := SeedCatalog(context.Background(), catalog, stages, templates)

	assert.ErrorIs(t, err, ErrCatalogInvalid)
	assert.Empty(t, stages.byCode, "nothing is written when validation fails")
}

// ============================================================================
// FILE LOADING
// ============================================================================

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `growth_stages:
  - name: "Land Preparation"
    code: "LAND_PREP"
    order_sequence: 1
    typical_duration_days: 14
    task_templates:
      - task_type: "maintenance"
        title: "Plow {field_name}"
        priority: "high"
        days_from_stage_start: 0
`
	assert.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	catalog, err := LoadCatalogFile(path)

	assert.NoError(t, err)
	assert.Len(t, catalog.GrowthStages, 1)
	assert.Equal(t, "LAND_PREP", catalog.GrowthStages[0].Code)
	assert.Len(t, catalog.GrowthStages[0].TaskTemplates, 1)
	assert.Equal(t, "high", catalog.GrowthStages[0].TaskTemplates[0].Priority)
}

func TestLoadCatalogFile_MissingFile(t *testing.T) {
	_, err := LoadCatalogFile(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoadCatalogFile_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("growth_stages: [unclosed"), 0o644))

	_, err := LoadCatalogFile(path)

	assert.Error(t, err)
}

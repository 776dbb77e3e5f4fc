package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
)

// ============================================================================
// IN-MEMORY STORE FAKES
// ============================================================================

type fakeGrowthStageStore struct {
	stages []models.GrowthStage
}

func (f *fakeGrowthStageStore) GetAll(_ context.Context) ([]models.GrowthStage, error) {
	return f.stages, nil
}

func (f *fakeGrowthStageStore) GetByID(_ context.Context, id uuid.UUID) (*models.GrowthStage, error) {
	for i := range f.stages {
		if f.stages[i].ID == id {
			return &f.stages[i], nil
		}
	}
	return nil, fmt.Errorf("growth stage not found")
}

type fakeTemplateStore struct {
	templates []models.TaskTemplate
}

func (f *fakeTemplateStore) GetActiveByStageID(_ context.Context, stageID uuid.UUID) ([]models.TaskTemplate, error) {
	var out []models.TaskTemplate
	for _, tmpl := range f.templates {
		if tmpl.GrowthStageID == stageID && tmpl.IsActive {
			out = append(out, tmpl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DaysFromStageStart < out[j].DaysFromStageStart
	})
	return out, nil
}

func (f *fakeTemplateStore) GetByID(_ context.Context, id uuid.UUID) (*models.TaskTemplate, error) {
	for i := range f.templates {
		if f.templates[i].ID == id {
			return &f.templates[i], nil
		}
	}
	return nil, fmt.Errorf("task template not found")
}

type fakePlantingStore struct {
	plantings map[uuid.UUID]*models.Planting
}

func (f *fakePlantingStore) GetByID(_ context.Context, id uuid.UUID) (*models.Planting, error) {
	if p, ok := f.plantings[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("planting not found")
}

func (f *fakePlantingStore) GetActiveByFieldID(_ context.Context, fieldID uuid.UUID) ([]models.Planting, error) {
	var out []models.Planting
	for _, p := range f.plantings {
		if p.FieldID == fieldID && p.Status == models.PlantingActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakePlantingStageStore struct {
	stages  map[uuid.UUID]*models.PlantingStage
	updates int
}

func (f *fakePlantingStageStore) GetByID(_ context.Context, id uuid.UUID) (*models.PlantingStage, error) {
	if ps, ok := f.stages[id]; ok {
		copied := *ps
		return &copied, nil
	}
	return nil, fmt.Errorf("planting stage not found")
}

func (f *fakePlantingStageStore) GetCurrentInProgress(_ context.Context, plantingID uuid.UUID) (*models.PlantingStage, error) {
	for _, ps := range f.stages {
		if ps.PlantingID == plantingID && ps.Status == models.StageInProgress {
			copied := *ps
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakePlantingStageStore) Update(_ context.Context, ps *models.PlantingStage) error {
	if _, ok := f.stages[ps.ID]; !ok {
		return fmt.Errorf("planting stage not found")
	}
	copied := *ps
	f.stages[ps.ID] = &copied
	f.updates++
	return nil
}

type fakeTaskStore struct {
	tasks map[uuid.UUID]*models.AutomatedTask
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*models.AutomatedTask)}
}

func (f *fakeTaskStore) Create(_ context.Context, task *models.AutomatedTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskStore) GetDueScheduled(_ context.Context, cutoff time.Time) ([]models.AutomatedTask, error) {
	var out []models.AutomatedTask
	for _, task := range f.tasks {
		if task.Status == models.AutomatedTaskScheduled && !task.ScheduledDate.After(cutoff) {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})
	return out, nil
}

func (f *fakeTaskStore) Update(_ context.Context, task *models.AutomatedTask) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return fmt.Errorf("automated task not found")
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

type fakeFarmTaskStore struct {
	created []models.FarmTask
}

func (f *fakeFarmTaskStore) Create(_ context.Context, task *models.FarmTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.Status = "open"
	f.created = append(f.created, *task)
	return nil
}

type fakeFieldStore struct {
	fields map[uuid.UUID]*models.Field
}

func (f *fakeFieldStore) GetByID(_ context.Context, id uuid.UUID) (*models.Field, error) {
	if field, ok := f.fields[id]; ok {
		return field, nil
	}
	return nil, fmt.Errorf("field not found")
}

func (f *fakeFieldStore) GetActiveFieldIDs(_ context.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, field := range f.fields {
		if field.Status == models.FieldActive {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeWeatherStore struct {
	latest map[uuid.UUID]*models.WeatherObservation
	window []models.WeatherObservation
}

func (f *fakeWeatherStore) LatestByField(_ context.Context, fieldID uuid.UUID) (*models.WeatherObservation, error) {
	return f.latest[fieldID], nil
}

func (f *fakeWeatherStore) WindowByField(_ context.Context, fieldID uuid.UUID, from, to time.Time) ([]models.WeatherObservation, error) {
	var out []models.WeatherObservation
	for _, obs := range f.window {
		if obs.FieldID == fieldID && !obs.RecordedAt.Before(from) && !obs.RecordedAt.After(to) {
			out = append(out, obs)
		}
	}
	return out, nil
}

type fakeAlertStore struct {
	weatherAlerts   []models.WeatherAlert
	inventoryAlerts []models.InventoryAlert
}

func (f *fakeAlertStore) CreateWeatherAlert(_ context.Context, alert *models.WeatherAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	alert.IsActive = true
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	f.weatherAlerts = append(f.weatherAlerts, *alert)
	return nil
}

func (f *fakeAlertStore) HasRecentActiveWeatherAlert(
	_ context.Context,
	fieldID uuid.UUID,
	plantingID *uuid.UUID,
	alertType models.WeatherAlertType,
	since time.Time,
) (bool, error) {
	for _, alert := range f.weatherAlerts {
		if alert.FieldID != fieldID || alert.AlertType != alertType || !alert.IsActive {
			continue
		}
		if alert.CreatedAt.Before(since) {
			continue
		}
		if (plantingID == nil) != (alert.PlantingID == nil) {
			continue
		}
		if plantingID != nil && *plantingID != *alert.PlantingID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeAlertStore) CreateInventoryAlert(_ context.Context, alert *models.InventoryAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	alert.IsActive = true
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	f.inventoryAlerts = append(f.inventoryAlerts, *alert)
	return nil
}

func (f *fakeAlertStore) HasRecentActiveInventoryAlert(
	_ context.Context,
	itemID uuid.UUID,
	alertType models.InventoryAlertType,
	since time.Time,
) (bool, error) {
	for _, alert := range f.inventoryAlerts {
		if alert.ItemID == itemID && alert.AlertType == alertType && alert.IsActive && !alert.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type fakeInventoryStore struct {
	items []models.InventoryItem
}

func (f *fakeInventoryStore) GetAll(_ context.Context) ([]models.InventoryItem, error) {
	return f.items, nil
}

type fakePublisher struct {
	weatherEvents   int
	inventoryEvents int
}

func (f *fakePublisher) PublishWeatherAlert(_ context.Context, _ *models.WeatherAlert) error {
	f.weatherEvents++
	return nil
}

func (f *fakePublisher) PublishInventoryAlert(_ context.Context, _ *models.InventoryAlert) error {
	f.inventoryEvents++
	return nil
}

type fakeTaskGenerator struct {
	calls int
	err   error
}

func (f *fakeTaskGenerator) GenerateTasksForStage(_ context.Context, _ *models.PlantingStage) ([]models.AutomatedTask, error) {
	f.calls++
	return nil, f.err
}

func floatPtr(v float64) *float64 { return &v }

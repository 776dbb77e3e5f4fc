package services

import (
	"context"
	"testing"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// FIXTURE
// ============================================================================

type alertFixture struct {
	service   *WeatherAlertService
	alerts    *fakeAlertStore
	weather   *fakeWeatherStore
	plantings *fakePlantingStore
	stages    *fakePlantingStageStore
	catalog   *fakeGrowthStageStore
	publisher *fakePublisher
	fieldID   uuid.UUID
}

func newAlertFixture() *alertFixture {
	fieldID := uuid.New()
	field := &models.Field{ID: fieldID, OwnerID: "owner-1", FieldName: "North Paddy", Status: models.FieldActive}

	f := &alertFixture{
		alerts:    &fakeAlertStore{},
		weather:   &fakeWeatherStore{latest: make(map[uuid.UUID]*models.WeatherObservation)},
		plantings: &fakePlantingStore{plantings: make(map[uuid.UUID]*models.Planting)},
		stages:    &fakePlantingStageStore{stages: make(map[uuid.UUID]*models.PlantingStage)},
		catalog:   &fakeGrowthStageStore{},
		publisher: &fakePublisher{},
		fieldID:   fieldID,
	}
	f.service = NewWeatherAlertService(
		&fakeFieldStore{fields: map[uuid.UUID]*models.Field{fieldID: field}},
		f.plantings, f.stages, f.catalog, f.weather, f.alerts, f.publisher,
	)
	return f
}

func (f *alertFixture) setLatest(temp, humidity, wind float64, condition models.WeatherCondition) {
	obs := makeObservation(temp, humidity, wind, condition)
	obs.FieldID = f.fieldID
	obs.RecordedAt = time.Now()
	f.latestIs(obs)
}

func (f *alertFixture) latestIs(obs *models.WeatherObservation) {
	f.weather.latest[f.fieldID] = obs
	f.weather.window = append(f.weather.window, *obs)
}

// addDailyObservations appends one observation per day for the past n days,
// most recent today.
func (f *alertFixture) addDailyObservations(n int, condition models.WeatherCondition, rainfall float64) {
	for d := 0; d < n; d++ {
		obs := models.WeatherObservation{
			ID:          uuid.New(),
			FieldID:     f.fieldID,
			Temperature: 29,
			Humidity:    70,
			Condition:   condition,
			Rainfall:    rainfall,
			RecordedAt:  time.Now().AddDate(0, 0, -d),
		}
		f.weather.window = append(f.weather.window, obs)
		if d == 0 {
			f.weather.latest[f.fieldID] = &obs
		}
	}
}

// addPlantingInStage registers an active planting whose current stage has the
// given catalog code.
func (f *alertFixture) addPlantingInStage(code string) uuid.UUID {
	stage := models.GrowthStage{ID: uuid.New(), Code: code, Name: code, TypicalDurationDays: 10}
	f.catalog.stages = append(f.catalog.stages, stage)

	planting := &models.Planting{
		ID:          uuid.New(),
		FieldID:     f.fieldID,
		VarietyName: "IR64",
		Status:      models.PlantingActive,
	}
	f.plantings.plantings[planting.ID] = planting

	started := time.Now().AddDate(0, 0, -3)
	ps := &models.PlantingStage{
		ID:            uuid.New(),
		PlantingID:    planting.ID,
		GrowthStageID: stage.ID,
		Status:        models.StageInProgress,
		StartedAt:     &started,
	}
	f.stages.stages[ps.ID] = ps
	return planting.ID
}

func alertTypes(alerts []models.WeatherAlert) []models.WeatherAlertType {
	out := make([]models.WeatherAlertType, len(alerts))
	for i, a := range alerts {
		out[i] = a.AlertType
	}
	return out
}

// ============================================================================
// INSTANT RULES
// ============================================================================

func TestGenerateAlerts_ExtremeHeat(t *testing.T) {
	f := newAlertFixture()
	f.setLatest(36, 50, 5, models.ConditionClear)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.AlertExtremeHeat, alerts[0].AlertType)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 1, f.publisher.weatherEvents, "created alert must be published")
}

func TestGenerateAlerts_ExtremeHeatCriticalAbove38(t *testing.T) {
	f := newAlertFixture()
	f.setLatest(38.5, 50, 5, models.ConditionClear)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
}

func TestGenerateAlerts_ColdStressSeverities(t *testing.T) {
	f := newAlertFixture()
	f.setLatest(17, 50, 5, models.ConditionClear)
	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)
	assert.NoError(t, err)
	assert.Equal(t, models.AlertColdStress, alerts[0].AlertType)
	assert.Equal(t, models.SeverityMedium, alerts[0].Severity)

	f = newAlertFixture()
	f.setLatest(14, 50, 5, models.ConditionClear)
	alerts, err = f.service.GenerateAlertsForField(context.Background(), f.fieldID)
	assert.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
}

func TestGenerateAlerts_HighHumidity(t *testing.T) {
	f := newAlertFixture()
	f.setLatest(25, 92, 5, models.ConditionCloudy)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Contains(t, alertTypes(alerts), models.AlertHighHumidity)
}

func TestGenerateAlerts_PestAndDiseaseWindows(t *testing.T) {
	// 27°C at 86% humidity sits inside both the pest and disease windows.
	f := newAlertFixture()
	f.setLatest(27, 86, 5, models.ConditionCloudy)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	types := alertTypes(alerts)
	assert.Contains(t, types, models.AlertPestRisk)
	assert.Contains(t, types, models.AlertDiseaseRisk)
}

func TestGenerateAlerts_NormalConditionsStaySilent(t *testing.T) {
	f := newAlertFixture()
	f.setLatest(28, 65, 5, models.ConditionClear)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestGenerateAlerts_NoObservationNoAlerts(t *testing.T) {
	f := newAlertFixture()

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Empty(t, alerts, "a field without data produces no alerts")
}

// ============================================================================
// WINDOW RULES
// ============================================================================

func TestGenerateAlerts_ProlongedWet(t *testing.T) {
	f := newAlertFixture()
	f.addDailyObservations(5, models.ConditionRainy, 12)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	types := alertTypes(alerts)
	assert.Contains(t, types, models.AlertProlongedWet)
	for _, a := range alerts {
		if a.AlertType == models.AlertProlongedWet {
			assert.Equal(t, models.SeverityMedium, a.Severity)
		}
	}
}

func TestGenerateAlerts_ProlongedWetHighAtSevenDays(t *testing.T) {
	f := newAlertFixture()
	f.addDailyObservations(7, models.ConditionRainy, 12)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	for _, a := range alerts {
		if a.AlertType == models.AlertProlongedWet {
			assert.Equal(t, models.SeverityHigh, a.Severity)
		}
	}
}

// Seven consecutive clear days raise a drought alert at severity medium; a
// duplicate within the dedup window is suppressed.
func TestGenerateAlerts_DroughtWithDedup(t *testing.T) {
	f := newAlertFixture()
	f.addDailyObservations(7, models.ConditionClear, 0)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)
	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.AlertDrought, alerts[0].AlertType)
	assert.Equal(t, models.SeverityMedium, alerts[0].Severity)

	// An eighth identical day shortly after must not duplicate the alert.
	f.addDailyObservations(1, models.ConditionClear, 0)
	again, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)
	assert.NoError(t, err)
	assert.Empty(t, again, "dedup window suppresses the repeat alert")
	assert.Len(t, f.alerts.weatherAlerts, 1)
}

func TestGenerateAlerts_DroughtHighAtTenDays(t *testing.T) {
	f := newAlertFixture()
	f.addDailyObservations(10, models.ConditionClear, 0)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
}

func TestGenerateAlerts_RainBreaksDroughtStreak(t *testing.T) {
	f := newAlertFixture()
	f.addDailyObservations(6, models.ConditionClear, 0)
	// A rainy day 7 days ago interrupts the streak.
	f.weather.window = append(f.weather.window, models.WeatherObservation{
		ID:         uuid.New(),
		FieldID:    f.fieldID,
		Condition:  models.ConditionRainy,
		Rainfall:   8,
		RecordedAt: time.Now().AddDate(0, 0, -6),
	})

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.NotContains(t, alertTypes(alerts), models.AlertDrought)
}

// ============================================================================
// STAGE OVERRIDES
// ============================================================================

// Flowering at 19°C is outside [20,33]: severity is forced to critical even
// though the generic cold threshold (<18) did not trip.
func TestGenerateAlerts_FloweringTemperatureCritical(t *testing.T) {
	f := newAlertFixture()
	plantingID := f.addPlantingInStage(models.StageCodeFlowering)
	f.setLatest(19, 65, 5, models.ConditionClear)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.AlertStageRisk, alerts[0].AlertType)
	assert.Equal(t, models.SeverityCritical, alerts[0].Severity)
	assert.NotNil(t, alerts[0].PlantingID)
	assert.Equal(t, plantingID, *alerts[0].PlantingID)
}

func TestGenerateAlerts_FloweringInRangeStaysSilent(t *testing.T) {
	f := newAlertFixture()
	f.addPlantingInStage(models.StageCodeFlowering)
	f.setLatest(28, 65, 5, models.ConditionClear)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestGenerateAlerts_TilleringStrongWind(t *testing.T) {
	f := newAlertFixture()
	plantingID := f.addPlantingInStage(models.StageCodeTillering)
	f.setLatest(28, 65, 18, models.ConditionCloudy)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.AlertStrongWind, alerts[0].AlertType)
	assert.Equal(t, plantingID, *alerts[0].PlantingID)
}

func TestGenerateAlerts_StageOverrideSkipsOtherStages(t *testing.T) {
	f := newAlertFixture()
	f.addPlantingInStage(models.StageCodeRipening)
	// Wind over the tillering limit, temperature outside flowering range.
	f.setLatest(19, 65, 18, models.ConditionCloudy)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	assert.Empty(t, alerts, "stage overrides apply only to their stage")
}

// Several independent rules can fire from one sweep.
func TestGenerateAlerts_MultipleRulesTogether(t *testing.T) {
	f := newAlertFixture()
	f.addPlantingInStage(models.StageCodeFlowering)
	f.setLatest(36, 92, 5, models.ConditionCloudy)

	alerts, err := f.service.GenerateAlertsForField(context.Background(), f.fieldID)

	assert.NoError(t, err)
	types := alertTypes(alerts)
	assert.Contains(t, types, models.AlertExtremeHeat)
	assert.Contains(t, types, models.AlertHighHumidity)
	assert.Contains(t, types, models.AlertStageRisk, "36°C is above the flowering maximum")
}

// ============================================================================
// SWEEP
// ============================================================================

func TestGenerateAlertsForAllFields_AggregatesCounts(t *testing.T) {
	f := newAlertFixture()
	f.setLatest(36, 50, 5, models.ConditionClear)

	result, err := f.service.GenerateAlertsForAllFields(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.FieldsChecked)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Suppressed)

	// Second sweep inside the dedup window only suppresses.
	result, err = f.service.GenerateAlertsForAllFields(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Suppressed)
}

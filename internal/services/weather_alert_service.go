package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"
	"croptask-service/internal/utils"

	"github.com/google/uuid"
)

// Threshold constants for the rule set. Temperatures in °C, humidity in %,
// wind in km/h, durations in days.
const (
	heatHighThreshold     = 35.0
	heatCriticalThreshold = 38.0
	coldMediumThreshold   = 18.0
	coldHighThreshold     = 15.0
	humidityHighThreshold = 90.0

	wetDaysMediumThreshold = 5
	wetDaysHighThreshold   = 7
	wetWindowDays          = 7

	droughtMediumThreshold = 7
	droughtHighThreshold   = 10
	droughtWindowDays      = 14

	floweringTempMin = 20.0
	floweringTempMax = 33.0
	tilleringMaxWind = 15.0

	pestTempMin     = 26.0
	pestTempMax     = 30.0
	pestHumidityMin = 80.0

	diseaseTempMin     = 22.0
	diseaseTempMax     = 28.0
	diseaseHumidityMin = 85.0
)

// weatherAlertDedupWindow suppresses a duplicate alert of the same type for
// the same subject within this interval.
const weatherAlertDedupWindow = 6 * time.Hour

// alertCandidate is a rule hit before dedup and persistence.
type alertCandidate struct {
	plantingID      *uuid.UUID
	alertType       models.WeatherAlertType
	severity        models.AlertSeverity
	title           string
	message         string
	evidence        utils.JSONMap
	recommendations utils.StringList
	ttl             time.Duration
}

// AlertTickResult summarizes one analyzer sweep.
type AlertTickResult struct {
	StartedAt     time.Time   `json:"started_at"`
	FieldsChecked int         `json:"fields_checked"`
	Created       int         `json:"created"`
	Suppressed    int         `json:"suppressed"`
	Errors        []TickError `json:"errors,omitempty"`
}

// WeatherAlertService evaluates observation data against agronomic threshold
// rules and persists expiring alerts. Rules are independent; several can fire
// from one sweep over the same field.
type WeatherAlertService struct {
	fieldRepo       FieldStore
	plantingRepo    PlantingStore
	stageRepo       PlantingStageStore
	growthStageRepo GrowthStageStore
	weatherRepo     WeatherObservationStore
	alertRepo       AlertStore
	publisher       AlertPublisher
}

func NewWeatherAlertService(
	fieldRepo FieldStore,
	plantingRepo PlantingStore,
	stageRepo PlantingStageStore,
	growthStageRepo GrowthStageStore,
	weatherRepo WeatherObservationStore,
	alertRepo AlertStore,
	publisher AlertPublisher,
) *WeatherAlertService {
	return &WeatherAlertService{
		fieldRepo:       fieldRepo,
		plantingRepo:    plantingRepo,
		stageRepo:       stageRepo,
		growthStageRepo: growthStageRepo,
		weatherRepo:     weatherRepo,
		alertRepo:       alertRepo,
		publisher:       publisher,
	}
}

// GenerateAlertsForAllFields sweeps every active field. A failure on one
// field is recorded and does not stop the sweep.
func (s *WeatherAlertService) GenerateAlertsForAllFields(ctx context.Context) (*AlertTickResult, error) {
	result := &AlertTickResult{StartedAt: time.Now()}

	fieldIDs, err := s.fieldRepo.GetActiveFieldIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active fields: %w", err)
	}

	for _, fieldID := range fieldIDs {
		result.FieldsChecked++
		created, suppressed, err := s.generateForField(ctx, fieldID)
		if err != nil {
			slog.Warn("Alert analysis failed for field", "field_id", fieldID, "error", err)
			result.Errors = append(result.Errors, TickError{ItemID: fieldID, Message: err.Error()})
			continue
		}
		result.Created += created
		result.Suppressed += suppressed
	}

	slog.Info("Weather alert sweep finished",
		"fields", result.FieldsChecked,
		"created", result.Created,
		"suppressed", result.Suppressed,
		"errors", len(result.Errors))
	return result, nil
}

// GenerateAlertsForField runs the full rule set against one field and returns
// the alerts that were actually created after dedup.
func (s *WeatherAlertService) GenerateAlertsForField(ctx context.Context, fieldID uuid.UUID) ([]models.WeatherAlert, error) {
	candidates, err := s.evaluateField(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	var created []models.WeatherAlert
	for _, c := range candidates {
		alert, err := s.emit(ctx, fieldID, c)
		if err != nil {
			return created, err
		}
		if alert != nil {
			created = append(created, *alert)
		}
	}
	return created, nil
}

func (s *WeatherAlertService) generateForField(ctx context.Context, fieldID uuid.UUID) (created, suppressed int, err error) {
	candidates, err := s.evaluateField(ctx, fieldID)
	if err != nil {
		return 0, 0, err
	}

	for _, c := range candidates {
		alert, err := s.emit(ctx, fieldID, c)
		if err != nil {
			return created, suppressed, err
		}
		if alert == nil {
			suppressed++
		} else {
			created++
		}
	}
	return created, suppressed, nil
}

// evaluateField gathers the field's latest observation plus rolling windows
// and applies every rule. A field without any observation yields no alerts.
func (s *WeatherAlertService) evaluateField(ctx context.Context, fieldID uuid.UUID) ([]alertCandidate, error) {
	latest, err := s.weatherRepo.LatestByField(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest observation: %w", err)
	}
	if latest == nil {
		slog.Debug("No weather data for field, skipping alert analysis", "field_id", fieldID)
		return nil, nil
	}

	now := time.Now()
	window, err := s.weatherRepo.WindowByField(ctx, fieldID, now.AddDate(0, 0, -droughtWindowDays), now)
	if err != nil {
		return nil, fmt.Errorf("failed to load observation window: %w", err)
	}

	candidates := evaluateInstantRules(latest)
	candidates = append(candidates, evaluateWindowRules(window, now)...)

	stageCandidates, err := s.evaluateStageRules(ctx, fieldID, latest)
	if err != nil {
		return nil, err
	}
	return append(candidates, stageCandidates...), nil
}

// evaluateInstantRules applies the single-observation thresholds.
func evaluateInstantRules(obs *models.WeatherObservation) []alertCandidate {
	var candidates []alertCandidate

	if obs.Temperature > heatHighThreshold {
		severity := models.SeverityHigh
		if obs.Temperature > heatCriticalThreshold {
			severity = models.SeverityCritical
		}
		candidates = append(candidates, alertCandidate{
			alertType: models.AlertExtremeHeat,
			severity:  severity,
			title:     "Extreme heat",
			message:   fmt.Sprintf("Temperature reached %.1f°C, above the %.0f°C stress threshold.", obs.Temperature, heatHighThreshold),
			evidence:  utils.JSONMap{"temperature": obs.Temperature, "threshold": heatHighThreshold, "recorded_at": obs.RecordedAt},
			recommendations: utils.StringList{
				"Maintain standing water to buffer canopy temperature",
				"Irrigate in early morning or late afternoon",
				"Monitor for leaf rolling and heat sterility",
			},
			ttl: 12 * time.Hour,
		})
	}

	if obs.Temperature < coldMediumThreshold {
		severity := models.SeverityMedium
		if obs.Temperature < coldHighThreshold {
			severity = models.SeverityHigh
		}
		candidates = append(candidates, alertCandidate{
			alertType: models.AlertColdStress,
			severity:  severity,
			title:     "Cold stress",
			message:   fmt.Sprintf("Temperature dropped to %.1f°C, below the %.0f°C threshold.", obs.Temperature, coldMediumThreshold),
			evidence:  utils.JSONMap{"temperature": obs.Temperature, "threshold": coldMediumThreshold, "recorded_at": obs.RecordedAt},
			recommendations: utils.StringList{
				"Raise water level to insulate the crop overnight",
				"Delay fertilizer application until temperatures recover",
			},
			ttl: 12 * time.Hour,
		})
	}

	if obs.Humidity > humidityHighThreshold {
		candidates = append(candidates, alertCandidate{
			alertType: models.AlertHighHumidity,
			severity:  models.SeverityMedium,
			title:     "High humidity",
			message:   fmt.Sprintf("Humidity at %.1f%%, above the %.0f%% threshold. Fungal disease pressure is elevated.", obs.Humidity, humidityHighThreshold),
			evidence:  utils.JSONMap{"humidity": obs.Humidity, "threshold": humidityHighThreshold, "recorded_at": obs.RecordedAt},
			recommendations: utils.StringList{
				"Inspect lower canopy for early blast or blight lesions",
				"Improve drainage and airflow where possible",
			},
			ttl: 12 * time.Hour,
		})
	}

	if obs.Temperature >= pestTempMin && obs.Temperature <= pestTempMax && obs.Humidity >= pestHumidityMin {
		candidates = append(candidates, alertCandidate{
			alertType: models.AlertPestRisk,
			severity:  models.SeverityMedium,
			title:     "Pest outbreak conditions",
			message: fmt.Sprintf("Temperature %.1f°C with humidity %.1f%% favors pest reproduction (brown planthopper, stem borer).",
				obs.Temperature, obs.Humidity),
			evidence: utils.JSONMap{"temperature": obs.Temperature, "humidity": obs.Humidity, "recorded_at": obs.RecordedAt},
			recommendations: utils.StringList{
				"Scout field edges and tiller bases for pest activity",
				"Set up light traps for monitoring",
			},
			ttl: 48 * time.Hour,
		})
	}

	if obs.Temperature >= diseaseTempMin && obs.Temperature <= diseaseTempMax && obs.Humidity >= diseaseHumidityMin {
		candidates = append(candidates, alertCandidate{
			alertType: models.AlertDiseaseRisk,
			severity:  models.SeverityMedium,
			title:     "Disease outbreak conditions",
			message: fmt.Sprintf("Temperature %.1f°C with humidity %.1f%% favors fungal and bacterial disease development.",
				obs.Temperature, obs.Humidity),
			evidence: utils.JSONMap{"temperature": obs.Temperature, "humidity": obs.Humidity, "recorded_at": obs.RecordedAt},
			recommendations: utils.StringList{
				"Inspect for blast, sheath blight and bacterial leaf streak",
				"Consider preventive fungicide if symptoms appear",
			},
			ttl: 72 * time.Hour,
		})
	}

	return candidates
}

// evaluateWindowRules applies the rolling-window rules: prolonged wet over
// the trailing week and drought over the trailing two weeks.
func evaluateWindowRules(window []models.WeatherObservation, now time.Time) []alertCandidate {
	var candidates []alertCandidate

	wetDays := countRainyDays(window, now.AddDate(0, 0, -wetWindowDays))
	if wetDays >= wetDaysMediumThreshold {
		severity := models.SeverityMedium
		if wetDays >= wetDaysHighThreshold {
			severity = models.SeverityHigh
		}
		candidates = append(candidates, alertCandidate{
			alertType: models.AlertProlongedWet,
			severity:  severity,
			title:     "Prolonged wet period",
			message:   fmt.Sprintf("%d rainy days in the last %d days. Waterlogging and disease pressure are elevated.", wetDays, wetWindowDays),
			evidence:  utils.JSONMap{"rainy_days": wetDays, "window_days": wetWindowDays},
			recommendations: utils.StringList{
				"Check drainage outlets and clear blockages",
				"Postpone fertilizer application until fields drain",
			},
			ttl: 24 * time.Hour,
		})
	}

	dryDays := trailingClearDays(window, now)
	if dryDays >= droughtMediumThreshold {
		severity := models.SeverityMedium
		if dryDays >= droughtHighThreshold {
			severity = models.SeverityHigh
		}
		candidates = append(candidates, alertCandidate{
			alertType: models.AlertDrought,
			severity:  severity,
			title:     "Drought conditions",
			message:   fmt.Sprintf("%d consecutive days without rain. Soil moisture reserves are depleting.", dryDays),
			evidence:  utils.JSONMap{"consecutive_dry_days": dryDays},
			recommendations: utils.StringList{
				"Prioritize irrigation for flowering plantings",
				"Check pump capacity and water source levels",
			},
			ttl: 72 * time.Hour,
		})
	}

	return candidates
}

// evaluateStageRules applies the stage-sensitive overrides per active
// planting: flowering is temperature-critical, tillering is wind-sensitive.
func (s *WeatherAlertService) evaluateStageRules(ctx context.Context, fieldID uuid.UUID, obs *models.WeatherObservation) ([]alertCandidate, error) {
	plantings, err := s.plantingRepo.GetActiveByFieldID(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active plantings: %w", err)
	}

	var candidates []alertCandidate
	for i := range plantings {
		planting := &plantings[i]

		current, err := s.stageRepo.GetCurrentInProgress(ctx, planting.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load current stage for planting %s: %w", planting.ID, err)
		}
		if current == nil {
			continue
		}

		stage, err := s.growthStageRepo.GetByID(ctx, current.GrowthStageID)
		if err != nil {
			return nil, fmt.Errorf("failed to load growth stage: %w", err)
		}

		switch stage.Code {
		case models.StageCodeFlowering:
			if obs.Temperature < floweringTempMin || obs.Temperature > floweringTempMax {
				plantingID := planting.ID
				candidates = append(candidates, alertCandidate{
					plantingID: &plantingID,
					alertType:  models.AlertStageRisk,
					severity:   models.SeverityCritical,
					title:      "Critical temperature during flowering",
					message: fmt.Sprintf("Temperature %.1f°C is outside the %.0f-%.0f°C flowering range for %s. Spikelet sterility risk.",
						obs.Temperature, floweringTempMin, floweringTempMax, planting.VarietyName),
					evidence: utils.JSONMap{
						"temperature": obs.Temperature,
						"range_min":   floweringTempMin,
						"range_max":   floweringTempMax,
						"stage_code":  stage.Code,
					},
					recommendations: utils.StringList{
						"Maintain 5-10cm standing water to moderate canopy temperature",
						"Avoid any field disturbance during anthesis hours",
					},
					ttl: 12 * time.Hour,
				})
			}
		case models.StageCodeTillering:
			if obs.WindSpeed > tilleringMaxWind {
				plantingID := planting.ID
				candidates = append(candidates, alertCandidate{
					plantingID: &plantingID,
					alertType:  models.AlertStrongWind,
					severity:   models.SeverityMedium,
					title:      "Strong wind during tillering",
					message: fmt.Sprintf("Wind speed %.1f km/h exceeds the %.0f km/h limit for young tillers of %s.",
						obs.WindSpeed, tilleringMaxWind, planting.VarietyName),
					evidence: utils.JSONMap{
						"wind_speed": obs.WindSpeed,
						"threshold":  tilleringMaxWind,
						"stage_code": stage.Code,
					},
					recommendations: utils.StringList{
						"Check for lodged or uprooted seedlings after the wind passes",
						"Keep water level up to anchor young plants",
					},
					ttl: 6 * time.Hour,
				})
			}
		}
	}
	return candidates, nil
}

// emit persists a candidate unless an equivalent active alert already exists
// inside the dedup window. Returns nil when suppressed.
func (s *WeatherAlertService) emit(ctx context.Context, fieldID uuid.UUID, c alertCandidate) (*models.WeatherAlert, error) {
	exists, err := s.alertRepo.HasRecentActiveWeatherAlert(ctx, fieldID, c.plantingID, c.alertType, time.Now().Add(-weatherAlertDedupWindow))
	if err != nil {
		return nil, err
	}
	if exists {
		slog.Debug("Suppressed duplicate weather alert",
			"field_id", fieldID,
			"alert_type", c.alertType)
		return nil, nil
	}

	alert := models.WeatherAlert{
		FieldID:         fieldID,
		PlantingID:      c.plantingID,
		AlertType:       c.alertType,
		Severity:        c.severity,
		Title:           c.title,
		Message:         c.message,
		Evidence:        c.evidence,
		Recommendations: c.recommendations,
		ExpiresAt:       time.Now().Add(c.ttl),
	}
	if err := s.alertRepo.CreateWeatherAlert(ctx, &alert); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishWeatherAlert(ctx, &alert); err != nil {
			// Alert is persisted; fan-out failure must not fail the sweep.
			slog.Warn("Failed to publish weather alert event", "alert_id", alert.ID, "error", err)
		}
	}
	return &alert, nil
}

// countRainyDays counts distinct calendar days in the window, at or after
// cutoff, with at least one rainy observation.
func countRainyDays(window []models.WeatherObservation, cutoff time.Time) int {
	days := make(map[string]bool)
	for i := range window {
		obs := &window[i]
		if obs.RecordedAt.Before(cutoff) {
			continue
		}
		if obs.IsRainy() {
			days[obs.RecordedAt.Format("2006-01-02")] = true
		}
	}
	return len(days)
}

// trailingClearDays counts consecutive calendar days without rain, walking
// backwards from the most recent observed day. Days with no observation at
// all break the streak; absence of data is not evidence of drought.
func trailingClearDays(window []models.WeatherObservation, now time.Time) int {
	if len(window) == 0 {
		return 0
	}

	rainy := make(map[string]bool)
	observed := make(map[string]bool)
	for i := range window {
		obs := &window[i]
		day := obs.RecordedAt.Format("2006-01-02")
		observed[day] = true
		if obs.IsRainy() {
			rainy[day] = true
		}
	}

	streak := 0
	for d := 0; d < droughtWindowDays; d++ {
		day := now.AddDate(0, 0, -d).Format("2006-01-02")
		if !observed[day] || rainy[day] {
			break
		}
		streak++
	}
	return streak
}

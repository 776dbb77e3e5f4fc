package services

import (
	"testing"

	"croptask-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func makeObservation(temp, humidity, wind float64, condition models.WeatherCondition) *models.WeatherObservation {
	return &models.WeatherObservation{
		Temperature: temp,
		Humidity:    humidity,
		WindSpeed:   wind,
		Condition:   condition,
	}
}

func TestEvaluateWeatherRule_NilRuleAlwaysSuitable(t *testing.T) {
	ok, reasons := EvaluateWeatherRule(nil, makeObservation(45, 100, 80, models.ConditionStormy))

	assert.True(t, ok, "nil rule must accept any observation")
	assert.Empty(t, reasons)
}

func TestEvaluateWeatherRule_EmptyRuleAlwaysSuitable(t *testing.T) {
	ok, reasons := EvaluateWeatherRule(&models.WeatherRule{}, makeObservation(45, 100, 80, models.ConditionStormy))

	assert.True(t, ok, "rule with no constraints must accept any observation")
	assert.Empty(t, reasons)
}

func TestEvaluateWeatherRule_TemperatureTooHigh(t *testing.T) {
	rule := &models.WeatherRule{TemperatureMax: floatPtr(32)}

	ok, reasons := EvaluateWeatherRule(rule, makeObservation(35, 60, 5, models.ConditionClear))

	assert.False(t, ok)
	assert.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "Temperature too high (35")
}

func TestEvaluateWeatherRule_TemperatureTooLow(t *testing.T) {
	rule := &models.WeatherRule{TemperatureMin: floatPtr(18)}

	ok, reasons := EvaluateWeatherRule(rule, makeObservation(12.5, 60, 5, models.ConditionClear))

	assert.False(t, ok)
	assert.Contains(t, reasons[0], "Temperature too low (12.5")
}

func TestEvaluateWeatherRule_BoundaryIsSuitable(t *testing.T) {
	rule := &models.WeatherRule{
		TemperatureMin: floatPtr(18),
		TemperatureMax: floatPtr(32),
		HumidityMax:    floatPtr(90),
		MaxWindSpeed:   floatPtr(15),
	}

	// Exact bounds pass; only strict violations fail.
	ok, reasons := EvaluateWeatherRule(rule, makeObservation(32, 90, 15, models.ConditionClear))

	assert.True(t, ok)
	assert.Empty(t, reasons)
}

func TestEvaluateWeatherRule_MultipleViolationsAllReported(t *testing.T) {
	rule := &models.WeatherRule{
		TemperatureMax: floatPtr(30),
		HumidityMax:    floatPtr(80),
		MaxWindSpeed:   floatPtr(10),
	}

	ok, reasons := EvaluateWeatherRule(rule, makeObservation(36, 95, 22, models.ConditionCloudy))

	assert.False(t, ok)
	assert.Len(t, reasons, 3, "each violated constraint contributes a reason")
}

func TestEvaluateWeatherRule_AvoidConditions(t *testing.T) {
	rule := &models.WeatherRule{
		AvoidConditions: []models.WeatherCondition{models.ConditionRainy, models.ConditionStormy},
	}

	ok, reasons := EvaluateWeatherRule(rule, makeObservation(25, 70, 5, models.ConditionStormy))
	assert.False(t, ok)
	assert.Contains(t, reasons[0], "stormy")

	ok, _ = EvaluateWeatherRule(rule, makeObservation(25, 70, 5, models.ConditionClear))
	assert.True(t, ok)
}

func TestEvaluateWeatherRule_RequiredConditions(t *testing.T) {
	rule := &models.WeatherRule{
		RequiredConditions: []models.WeatherCondition{models.ConditionClear, models.ConditionCloudy},
	}

	ok, _ := EvaluateWeatherRule(rule, makeObservation(25, 70, 5, models.ConditionCloudy))
	assert.True(t, ok)

	ok, reasons := EvaluateWeatherRule(rule, makeObservation(25, 70, 5, models.ConditionFoggy))
	assert.False(t, ok)
	assert.Contains(t, reasons[0], "foggy")
}

// Relaxing a constraint must never turn a suitable observation unsuitable.
func TestEvaluateWeatherRule_RelaxedRuleStaysSuitable(t *testing.T) {
	obs := makeObservation(28, 75, 8, models.ConditionClear)

	strict := &models.WeatherRule{TemperatureMax: floatPtr(30), HumidityMax: floatPtr(80)}
	relaxed := &models.WeatherRule{TemperatureMax: floatPtr(35)}

	strictOK, _ := EvaluateWeatherRule(strict, obs)
	relaxedOK, _ := EvaluateWeatherRule(relaxed, obs)

	assert.True(t, strictOK)
	assert.True(t, relaxedOK, "removing constraints must not introduce failures")
}

func TestUnsuitabilityReason(t *testing.T) {
	assert.Equal(t, "Weather conditions not suitable", UnsuitabilityReason(nil))
	assert.Equal(t, "a; b", UnsuitabilityReason([]string{"a", "b"}))
}

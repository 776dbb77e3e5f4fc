package services

import (
	"fmt"
	"strings"

	"croptask-service/internal/models"
)

// EvaluateWeatherRule checks an observation against a template's suitability
// rule. Absent rule fields impose no constraint; present constraints are
// ANDed. A nil rule is always suitable. The returned reasons name each failed
// constraint; an empty slice with ok=true means the observation passed.
func EvaluateWeatherRule(rule *models.WeatherRule, obs *models.WeatherObservation) (bool, []string) {
	if rule == nil {
		return true, nil
	}

	var reasons []string

	if rule.TemperatureMin != nil && obs.Temperature < *rule.TemperatureMin {
		reasons = append(reasons, fmt.Sprintf("Temperature too low (%.1f°C, minimum %.1f°C)",
			obs.Temperature, *rule.TemperatureMin))
	}
	if rule.TemperatureMax != nil && obs.Temperature > *rule.TemperatureMax {
		reasons = append(reasons, fmt.Sprintf("Temperature too high (%.1f°C, maximum %.1f°C)",
			obs.Temperature, *rule.TemperatureMax))
	}
	if rule.HumidityMin != nil && obs.Humidity < *rule.HumidityMin {
		reasons = append(reasons, fmt.Sprintf("Humidity too low (%.1f%%, minimum %.1f%%)",
			obs.Humidity, *rule.HumidityMin))
	}
	if rule.HumidityMax != nil && obs.Humidity > *rule.HumidityMax {
		reasons = append(reasons, fmt.Sprintf("Humidity too high (%.1f%%, maximum %.1f%%)",
			obs.Humidity, *rule.HumidityMax))
	}
	if rule.MaxWindSpeed != nil && obs.WindSpeed > *rule.MaxWindSpeed {
		reasons = append(reasons, fmt.Sprintf("Wind too strong (%.1f km/h, maximum %.1f km/h)",
			obs.WindSpeed, *rule.MaxWindSpeed))
	}

	for _, avoided := range rule.AvoidConditions {
		if obs.Condition == avoided {
			reasons = append(reasons, fmt.Sprintf("Unfavorable weather condition (%s)", obs.Condition))
			break
		}
	}

	// An empty required set imposes no restriction.
	if len(rule.RequiredConditions) > 0 {
		matched := false
		for _, required := range rule.RequiredConditions {
			if obs.Condition == required {
				matched = true
				break
			}
		}
		if !matched {
			required := make([]string, len(rule.RequiredConditions))
			for i, c := range rule.RequiredConditions {
				required[i] = string(c)
			}
			reasons = append(reasons, fmt.Sprintf("Condition %s not among required conditions (%s)",
				obs.Condition, strings.Join(required, ", ")))
		}
	}

	return len(reasons) == 0, reasons
}

// UnsuitabilityReason joins the failed-constraint clauses into one
// human-readable delay reason. When the evaluator flagged the observation
// unsuitable without naming a constraint, a generic reason is returned.
func UnsuitabilityReason(reasons []string) string {
	if len(reasons) == 0 {
		return "Weather conditions not suitable"
	}
	return strings.Join(reasons, "; ")
}

package models

import "fmt"

type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
	StageDelayed    StageStatus = "delayed"
	StageSkipped    StageStatus = "skipped"
)

type TaskType string

const (
	TaskWatering    TaskType = "watering"
	TaskFertilizing TaskType = "fertilizing"
	TaskWeeding     TaskType = "weeding"
	TaskPestControl TaskType = "pest_control"
	TaskHarvesting  TaskType = "harvesting"
	TaskMaintenance TaskType = "maintenance"
)

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

// priorityRank orders priorities so policy thresholds can compare them.
var priorityRank = map[TaskPriority]int{
	PriorityLow:      0,
	PriorityMedium:   1,
	PriorityHigh:     2,
	PriorityCritical: 3,
}

// AtLeast reports whether p is equal to or more urgent than other.
func (p TaskPriority) AtLeast(other TaskPriority) bool {
	return priorityRank[p] >= priorityRank[other]
}

type AutomatedTaskStatus string

const (
	AutomatedTaskScheduled      AutomatedTaskStatus = "scheduled"
	AutomatedTaskReady          AutomatedTaskStatus = "ready"
	AutomatedTaskWeatherDelayed AutomatedTaskStatus = "weather_delayed"
	AutomatedTaskCompleted      AutomatedTaskStatus = "completed"
	AutomatedTaskSkipped        AutomatedTaskStatus = "skipped"
	AutomatedTaskCancelled      AutomatedTaskStatus = "cancelled"
)

// IsTerminal reports whether the task status admits no further transitions.
func (s AutomatedTaskStatus) IsTerminal() bool {
	switch s {
	case AutomatedTaskCompleted, AutomatedTaskSkipped, AutomatedTaskCancelled:
		return true
	default:
		return false
	}
}

type WeatherCondition string

const (
	ConditionClear  WeatherCondition = "clear"
	ConditionCloudy WeatherCondition = "cloudy"
	ConditionRainy  WeatherCondition = "rainy"
	ConditionStormy WeatherCondition = "stormy"
	ConditionSnowy  WeatherCondition = "snowy"
	ConditionFoggy  WeatherCondition = "foggy"
)

// ParseWeatherCondition validates an incoming condition value. Unknown values
// are rejected at the ingestion boundary instead of being stored as-is.
func ParseWeatherCondition(raw string) (WeatherCondition, error) {
	c := WeatherCondition(raw)
	switch c {
	case ConditionClear, ConditionCloudy, ConditionRainy, ConditionStormy, ConditionSnowy, ConditionFoggy:
		return c, nil
	default:
		return "", fmt.Errorf("unrecognized weather condition %q", raw)
	}
}

type Season string

const (
	SeasonWet Season = "wet"
	SeasonDry Season = "dry"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

var severityRank = map[AlertSeverity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Max returns the more severe of the two severities.
func (s AlertSeverity) Max(other AlertSeverity) AlertSeverity {
	if severityRank[other] > severityRank[s] {
		return other
	}
	return s
}

type WeatherAlertType string

const (
	AlertExtremeHeat  WeatherAlertType = "extreme_heat"
	AlertColdStress   WeatherAlertType = "cold_stress"
	AlertHighHumidity WeatherAlertType = "high_humidity"
	AlertProlongedWet WeatherAlertType = "prolonged_wet"
	AlertDrought      WeatherAlertType = "drought"
	AlertStrongWind   WeatherAlertType = "strong_wind"
	AlertStageRisk    WeatherAlertType = "stage_critical"
	AlertPestRisk     WeatherAlertType = "pest_risk"
	AlertDiseaseRisk  WeatherAlertType = "disease_risk"
)

type InventoryAlertType string

const (
	AlertLowStock     InventoryAlertType = "low_stock"
	AlertExpiringSoon InventoryAlertType = "expiring_soon"
	AlertExpired      InventoryAlertType = "expired"
)

type PlantingStatus string

const (
	PlantingActive    PlantingStatus = "active"
	PlantingHarvested PlantingStatus = "harvested"
	PlantingFailed    PlantingStatus = "failed"
	PlantingArchived  PlantingStatus = "archived"
)

type FieldStatus string

const (
	FieldActive   FieldStatus = "active"
	FieldInactive FieldStatus = "inactive"
	FieldArchived FieldStatus = "archived"
)

// IsValidTaskType reports whether a catalog value is one of the closed task types.
func IsValidTaskType(t TaskType) bool {
	switch t {
	case TaskWatering, TaskFertilizing, TaskWeeding, TaskPestControl, TaskHarvesting, TaskMaintenance:
		return true
	default:
		return false
	}
}

// IsValidTaskPriority reports whether a catalog value is one of the closed priorities.
func IsValidTaskPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// IsValidSeason reports whether a planting season value is recognized.
func IsValidSeason(s Season) bool {
	return s == SeasonWet || s == SeasonDry
}

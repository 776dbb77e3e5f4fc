package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskPriorityAtLeast(t *testing.T) {
	assert.True(t, PriorityHigh.AtLeast(PriorityHigh))
	assert.True(t, PriorityCritical.AtLeast(PriorityHigh))
	assert.False(t, PriorityMedium.AtLeast(PriorityHigh))
	assert.False(t, PriorityLow.AtLeast(PriorityMedium))
}

func TestAutomatedTaskStatusIsTerminal(t *testing.T) {
	assert.True(t, AutomatedTaskCompleted.IsTerminal())
	assert.True(t, AutomatedTaskSkipped.IsTerminal())
	assert.True(t, AutomatedTaskCancelled.IsTerminal())
	assert.False(t, AutomatedTaskScheduled.IsTerminal())
	assert.False(t, AutomatedTaskReady.IsTerminal())
	assert.False(t, AutomatedTaskWeatherDelayed.IsTerminal())
}

// Reschedule keeps the due date exactly the grace period past the scheduled
// date and reverts the task for re-evaluation on the next tick.
func TestAutomatedTaskReschedule(t *testing.T) {
	scheduled := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	task := &AutomatedTask{
		ScheduledDate: scheduled,
		DueDate:       scheduled.AddDate(0, 0, DueDateGraceDays),
		Status:        AutomatedTaskWeatherDelayed,
	}

	newScheduled := scheduled.AddDate(0, 0, 2)
	task.Reschedule(newScheduled, "Temperature too high (35.0°C, maximum 32.0°C)")

	assert.Equal(t, newScheduled, task.ScheduledDate)
	assert.Equal(t, newScheduled.AddDate(0, 0, DueDateGraceDays), task.DueDate)
	assert.Equal(t, AutomatedTaskScheduled, task.Status)
	assert.NotNil(t, task.DelayReason)
	assert.Contains(t, *task.DelayReason, "Temperature too high")
}

func TestParseWeatherCondition(t *testing.T) {
	c, err := ParseWeatherCondition("rainy")
	assert.NoError(t, err)
	assert.Equal(t, ConditionRainy, c)

	_, err = ParseWeatherCondition("drizzle")
	assert.Error(t, err)
	_, err = ParseWeatherCondition("")
	assert.Error(t, err)
}

func TestWeatherObservationIsRainy(t *testing.T) {
	assert.True(t, (&WeatherObservation{Condition: ConditionRainy}).IsRainy())
	assert.True(t, (&WeatherObservation{Condition: ConditionStormy}).IsRainy())
	assert.True(t, (&WeatherObservation{Condition: ConditionCloudy, Rainfall: 3}).IsRainy())
	assert.False(t, (&WeatherObservation{Condition: ConditionClear}).IsRainy())
}

func TestAlertSeverityMax(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityMedium.Max(SeverityCritical))
	assert.Equal(t, SeverityCritical, SeverityCritical.Max(SeverityLow))
	assert.Equal(t, SeverityHigh, SeverityHigh.Max(SeverityHigh))
}

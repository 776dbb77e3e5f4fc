package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// AUTOMATED TASKS
// ============================================================================

// DueDateGraceDays is the fixed gap between a task's scheduled date and its
// due date. It applies to initial generation and to every reschedule, so
// due_date > scheduled_date holds for the task's whole lifetime.
const DueDateGraceDays = 2

// AutomatedTask is a concrete, dated instance of a TaskTemplate for one
// planting stage, advanced through a weather-gated readiness state machine.
type AutomatedTask struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	PlantingID      uuid.UUID           `json:"planting_id" db:"planting_id"`
	PlantingStageID uuid.UUID           `json:"planting_stage_id" db:"planting_stage_id"`
	TaskTemplateID  uuid.UUID           `json:"task_template_id" db:"task_template_id"`
	TaskType        TaskType            `json:"task_type" db:"task_type"`
	Title           string              `json:"title" db:"title"`
	Instructions    string              `json:"instructions" db:"instructions"`
	Priority        TaskPriority        `json:"priority" db:"priority"`
	ScheduledDate   time.Time           `json:"scheduled_date" db:"scheduled_date"`
	DueDate         time.Time           `json:"due_date" db:"due_date"`
	Status          AutomatedTaskStatus `json:"status" db:"status"`
	DelayReason     *string             `json:"delay_reason,omitempty" db:"delay_reason"`
	GeneratedTaskID *uuid.UUID          `json:"generated_task_id,omitempty" db:"generated_task_id"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

// Reschedule pushes the task forward after a weather delay: new scheduled
// date, due date re-derived from the same grace period, status back to
// scheduled so the next tick re-evaluates it.
func (t *AutomatedTask) Reschedule(newScheduled time.Time, reason string) {
	t.ScheduledDate = newScheduled
	t.DueDate = newScheduled.AddDate(0, 0, DueDateGraceDays)
	t.Status = AutomatedTaskScheduled
	t.DelayReason = &reason
}

// FarmTask is the concrete work record spawned for high-urgency ready tasks.
// Its lifecycle beyond creation belongs to the presentation layer.
type FarmTask struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	PlantingID   uuid.UUID    `json:"planting_id" db:"planting_id"`
	TaskType     TaskType     `json:"task_type" db:"task_type"`
	Title        string       `json:"title" db:"title"`
	Instructions string       `json:"instructions" db:"instructions"`
	Priority     TaskPriority `json:"priority" db:"priority"`
	DueDate      time.Time    `json:"due_date" db:"due_date"`
	Status       string       `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

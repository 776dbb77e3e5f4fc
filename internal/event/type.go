package event

import "time"

// AlertQueue is the queue the notification service consumes alert events
// from.
const AlertQueue string = "farm_alert_events"

type AlertEventType string

const (
	WeatherAlertCreated   AlertEventType = "weather_alert_created"
	InventoryAlertCreated AlertEventType = "inventory_alert_created"
)

// AlertEvent is the message body pushed for every persisted alert. Subject
// identifies the field (weather) or inventory item (inventory); PlantingID is
// set only for stage-specific weather alerts.
type AlertEvent struct {
	ID         string         `json:"id"`
	EventType  AlertEventType `json:"event_type"`
	AlertID    string         `json:"alert_id"`
	SubjectID  string         `json:"subject_id"`
	PlantingID string         `json:"planting_id,omitempty"`
	OwnerID    string         `json:"owner_id,omitempty"`
	AlertType  string         `json:"alert_type"`
	Severity   string         `json:"severity"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	CreatedAt  time.Time      `json:"created_at"`
}

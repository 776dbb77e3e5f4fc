package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AlertEventPublisher publishes alert events to the farm_alert_events queue.
type AlertEventPublisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewAlertEventPublisher(conn *RabbitMQConnection) *AlertEventPublisher {
	return &AlertEventPublisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

func (p *AlertEventPublisher) PublishWeatherAlert(ctx context.Context, alert *models.WeatherAlert) error {
	event := AlertEvent{
		ID:        uuid.NewString(),
		EventType: WeatherAlertCreated,
		AlertID:   alert.ID.String(),
		SubjectID: alert.FieldID.String(),
		AlertType: string(alert.AlertType),
		Severity:  string(alert.Severity),
		Title:     alert.Title,
		Message:   alert.Message,
		CreatedAt: alert.CreatedAt,
	}
	if alert.PlantingID != nil {
		event.PlantingID = alert.PlantingID.String()
	}
	return p.publish(ctx, event)
}

func (p *AlertEventPublisher) PublishInventoryAlert(ctx context.Context, alert *models.InventoryAlert) error {
	event := AlertEvent{
		ID:        uuid.NewString(),
		EventType: InventoryAlertCreated,
		AlertID:   alert.ID.String(),
		SubjectID: alert.ItemID.String(),
		OwnerID:   alert.OwnerID,
		AlertType: string(alert.AlertType),
		Severity:  string(alert.Severity),
		Title:     alert.Title,
		Message:   alert.Message,
		CreatedAt: alert.CreatedAt,
	}
	return p.publish(ctx, event)
}

func (p *AlertEventPublisher) publish(ctx context.Context, event AlertEvent) error {
	_, err := p.conn.Channel.QueueDeclare(
		AlertQueue, // queue name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",         // exchange
		AlertQueue, // routing key (queue name)
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish alert event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Alert event published",
		"queue", AlertQueue,
		"event_type", event.EventType,
		"alert_id", event.AlertID)
	return nil
}

// GetMetrics returns publisher counters for the health endpoint.
func (p *AlertEventPublisher) GetMetrics() map[string]any {
	return map[string]any{
		"messages_published": p.messagesPublished,
		"messages_failed":    p.messagesFailed,
		"last_publish_time":  p.lastPublishTime,
		"queue":              AlertQueue,
	}
}

// HealthCheck reports whether the underlying connection is usable.
func (p *AlertEventPublisher) HealthCheck() bool {
	return p.conn != nil && p.conn.Connection != nil && !p.conn.Connection.IsClosed()
}

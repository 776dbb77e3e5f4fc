package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// ============================================================================
// WEATHER ALERTS
// ============================================================================

func (r *AlertRepository) CreateWeatherAlert(ctx context.Context, alert *models.WeatherAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	alert.CreatedAt = time.Now()
	alert.IsActive = true

	query := `
		INSERT INTO weather_alerts (
			id, field_id, planting_id, alert_type, severity, title, message,
			evidence, recommendations, expires_at, is_active, is_read, created_at
		) VALUES (
			:id, :field_id, :planting_id, :alert_type, :severity, :title, :message,
			:evidence, :recommendations, :expires_at, :is_active, :is_read, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, alert)
	if err != nil {
		slog.Error("Failed to create weather alert",
			"field_id", alert.FieldID,
			"alert_type", alert.AlertType,
			"error", err)
		return fmt.Errorf("failed to create weather alert: %w", err)
	}

	slog.Info("Created weather alert",
		"id", alert.ID,
		"field_id", alert.FieldID,
		"alert_type", alert.AlertType,
		"severity", alert.Severity)
	return nil
}

// HasRecentActiveWeatherAlert is the dedup check: an active alert of the same
// (field, planting, type) created within the window suppresses a new one.
// The read-before-write window check races under concurrent analyzer runs;
// the deployment runs a single analyzer instance (see DESIGN.md).
func (r *AlertRepository) HasRecentActiveWeatherAlert(
	ctx context.Context,
	fieldID uuid.UUID,
	plantingID *uuid.UUID,
	alertType models.WeatherAlertType,
	since time.Time,
) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM weather_alerts
		WHERE field_id = $1
			AND alert_type = $2
			AND is_active = true
			AND created_at >= $3
			AND (planting_id = $4 OR ($4 IS NULL AND planting_id IS NULL))`

	if err := r.db.GetContext(ctx, &count, query, fieldID, alertType, since, plantingID); err != nil {
		return false, fmt.Errorf("failed to check recent weather alerts: %w", err)
	}
	return count > 0, nil
}

func (r *AlertRepository) GetActiveWeatherAlertsByField(ctx context.Context, fieldID uuid.UUID) ([]models.WeatherAlert, error) {
	var alerts []models.WeatherAlert
	query := `
		SELECT id, field_id, planting_id, alert_type, severity, title, message,
			evidence, recommendations, expires_at, is_active, is_read, created_at
		FROM weather_alerts
		WHERE field_id = $1 AND is_active = true AND expires_at > $2
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &alerts, query, fieldID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to get active weather alerts: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) DeactivateWeatherAlert(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE weather_alerts SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate weather alert: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("weather alert not found")
	}

	slog.Info("Deactivated weather alert", "id", id)
	return nil
}

// ============================================================================
// INVENTORY ALERTS
// ============================================================================

func (r *AlertRepository) CreateInventoryAlert(ctx context.Context, alert *models.InventoryAlert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	alert.CreatedAt = time.Now()
	alert.IsActive = true

	query := `
		INSERT INTO inventory_alerts (
			id, item_id, owner_id, alert_type, severity, title, message,
			evidence, recommendations, expires_at, is_active, is_read, created_at
		) VALUES (
			:id, :item_id, :owner_id, :alert_type, :severity, :title, :message,
			:evidence, :recommendations, :expires_at, :is_active, :is_read, :created_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, alert)
	if err != nil {
		slog.Error("Failed to create inventory alert",
			"item_id", alert.ItemID,
			"alert_type", alert.AlertType,
			"error", err)
		return fmt.Errorf("failed to create inventory alert: %w", err)
	}

	slog.Info("Created inventory alert",
		"id", alert.ID,
		"item_id", alert.ItemID,
		"alert_type", alert.AlertType,
		"severity", alert.Severity)
	return nil
}

func (r *AlertRepository) HasRecentActiveInventoryAlert(
	ctx context.Context,
	itemID uuid.UUID,
	alertType models.InventoryAlertType,
	since time.Time,
) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM inventory_alerts
		WHERE item_id = $1 AND alert_type = $2 AND is_active = true AND created_at >= $3`

	if err := r.db.GetContext(ctx, &count, query, itemID, alertType, since); err != nil {
		return false, fmt.Errorf("failed to check recent inventory alerts: %w", err)
	}
	return count > 0, nil
}

func (r *AlertRepository) GetActiveInventoryAlertsByOwner(ctx context.Context, ownerID string) ([]models.InventoryAlert, error) {
	var alerts []models.InventoryAlert
	query := `
		SELECT id, item_id, owner_id, alert_type, severity, title, message,
			evidence, recommendations, expires_at, is_active, is_read, created_at
		FROM inventory_alerts
		WHERE owner_id = $1 AND is_active = true AND expires_at > $2
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &alerts, query, ownerID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to get active inventory alerts: %w", err)
	}
	return alerts, nil
}

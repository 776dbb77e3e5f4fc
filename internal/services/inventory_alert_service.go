package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"
	"croptask-service/internal/utils"
)

// inventoryAlertDedupWindow suppresses a duplicate alert of the same type for
// the same item within this interval. Inventory moves slowly, so the window
// is a full day.
const inventoryAlertDedupWindow = 24 * time.Hour

// expiringSoonDays is how far ahead the analyzer warns about expiry.
const expiringSoonDays = 7

// InventoryAlertService runs the daily stock sweep: low quantity, approaching
// expiry, and already-expired items.
type InventoryAlertService struct {
	inventoryRepo InventoryStore
	alertRepo     AlertStore
	publisher     AlertPublisher
}

func NewInventoryAlertService(inventoryRepo InventoryStore, alertRepo AlertStore, publisher AlertPublisher) *InventoryAlertService {
	return &InventoryAlertService{
		inventoryRepo: inventoryRepo,
		alertRepo:     alertRepo,
		publisher:     publisher,
	}
}

// CheckAllItems sweeps every inventory item. One item's failure is recorded
// and does not stop the sweep.
func (s *InventoryAlertService) CheckAllItems(ctx context.Context) (*AlertTickResult, error) {
	result := &AlertTickResult{StartedAt: time.Now()}

	items, err := s.inventoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory items: %w", err)
	}

	for i := range items {
		item := &items[i]
		result.FieldsChecked++

		for _, c := range evaluateInventoryItem(item, result.StartedAt) {
			created, err := s.emit(ctx, item, c)
			if err != nil {
				slog.Warn("Failed to create inventory alert", "item_id", item.ID, "error", err)
				result.Errors = append(result.Errors, TickError{ItemID: item.ID, Message: err.Error()})
				continue
			}
			if created {
				result.Created++
			} else {
				result.Suppressed++
			}
		}
	}

	slog.Info("Inventory alert sweep finished",
		"items", result.FieldsChecked,
		"created", result.Created,
		"suppressed", result.Suppressed,
		"errors", len(result.Errors))
	return result, nil
}

// inventoryCandidate is a rule hit before dedup.
type inventoryCandidate struct {
	alertType       models.InventoryAlertType
	severity        models.AlertSeverity
	title           string
	message         string
	evidence        utils.JSONMap
	recommendations utils.StringList
	ttl             time.Duration
}

// evaluateInventoryItem applies the stock rules. Low stock and expiry rules
// are independent; one item can raise both.
func evaluateInventoryItem(item *models.InventoryItem, now time.Time) []inventoryCandidate {
	var candidates []inventoryCandidate

	if item.Quantity <= item.ReorderLevel {
		severity := models.SeverityHigh
		if item.Quantity <= 0 || item.Quantity <= item.ReorderLevel/2 {
			severity = models.SeverityCritical
		}
		candidates = append(candidates, inventoryCandidate{
			alertType: models.AlertLowStock,
			severity:  severity,
			title:     fmt.Sprintf("Low stock: %s", item.Name),
			message: fmt.Sprintf("%s is down to %.1f %s (reorder level %.1f %s).",
				item.Name, item.Quantity, item.Unit, item.ReorderLevel, item.Unit),
			evidence: utils.JSONMap{
				"quantity":      item.Quantity,
				"reorder_level": item.ReorderLevel,
				"unit":          item.Unit,
			},
			recommendations: utils.StringList{
				fmt.Sprintf("Reorder %s before upcoming scheduled tasks need it", item.Name),
			},
			ttl: 48 * time.Hour,
		})
	}

	if item.ExpiryDate != nil {
		expiry := time.Unix(*item.ExpiryDate, 0)
		switch {
		case !expiry.After(now):
			candidates = append(candidates, inventoryCandidate{
				alertType: models.AlertExpired,
				severity:  models.SeverityCritical,
				title:     fmt.Sprintf("Expired: %s", item.Name),
				message:   fmt.Sprintf("%s expired on %s. Do not apply expired product.", item.Name, expiry.Format("2006-01-02")),
				evidence:  utils.JSONMap{"expiry_date": expiry.Format("2006-01-02")},
				recommendations: utils.StringList{
					"Remove the item from usable stock",
					"Dispose of it according to the product label",
				},
				ttl: 72 * time.Hour,
			})
		case expiry.Before(now.AddDate(0, 0, expiringSoonDays)):
			daysLeft := int(expiry.Sub(now).Hours() / 24)
			severity := models.SeverityMedium
			if daysLeft <= 2 {
				severity = models.SeverityHigh
			}
			candidates = append(candidates, inventoryCandidate{
				alertType: models.AlertExpiringSoon,
				severity:  severity,
				title:     fmt.Sprintf("Expiring soon: %s", item.Name),
				message: fmt.Sprintf("%s expires on %s (%d days). Plan to use it first.",
					item.Name, expiry.Format("2006-01-02"), daysLeft),
				evidence: utils.JSONMap{
					"expiry_date": expiry.Format("2006-01-02"),
					"days_left":   daysLeft,
				},
				recommendations: utils.StringList{
					fmt.Sprintf("Schedule tasks that consume %s within %d days", item.Name, daysLeft),
				},
				ttl: 72 * time.Hour,
			})
		}
	}

	return candidates
}

func (s *InventoryAlertService) emit(ctx context.Context, item *models.InventoryItem, c inventoryCandidate) (bool, error) {
	exists, err := s.alertRepo.HasRecentActiveInventoryAlert(ctx, item.ID, c.alertType, time.Now().Add(-inventoryAlertDedupWindow))
	if err != nil {
		return false, err
	}
	if exists {
		slog.Debug("Suppressed duplicate inventory alert", "item_id", item.ID, "alert_type", c.alertType)
		return false, nil
	}

	alert := models.InventoryAlert{
		ItemID:          item.ID,
		OwnerID:         item.OwnerID,
		AlertType:       c.alertType,
		Severity:        c.severity,
		Title:           c.title,
		Message:         c.message,
		Evidence:        c.evidence,
		Recommendations: c.recommendations,
		ExpiresAt:       time.Now().Add(c.ttl),
	}
	if err := s.alertRepo.CreateInventoryAlert(ctx, &alert); err != nil {
		return false, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishInventoryAlert(ctx, &alert); err != nil {
			slog.Warn("Failed to publish inventory alert event", "alert_id", alert.ID, "error", err)
		}
	}
	return true, nil
}

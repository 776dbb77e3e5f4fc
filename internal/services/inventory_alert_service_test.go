package services

import (
	"context"
	"testing"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newInventoryFixture(items ...models.InventoryItem) (*InventoryAlertService, *fakeAlertStore, *fakePublisher) {
	alerts := &fakeAlertStore{}
	publisher := &fakePublisher{}
	service := NewInventoryAlertService(&fakeInventoryStore{items: items}, alerts, publisher)
	return service, alerts, publisher
}

func stockItem(name string, quantity, reorderLevel float64) models.InventoryItem {
	return models.InventoryItem{
		ID:           uuid.New(),
		OwnerID:      "owner-1",
		Name:         name,
		Quantity:     quantity,
		Unit:         "kg",
		ReorderLevel: reorderLevel,
	}
}

func expiringItem(name string, daysFromNow int) models.InventoryItem {
	item := stockItem(name, 100, 10)
	expiry := time.Now().AddDate(0, 0, daysFromNow).Unix()
	item.ExpiryDate = &expiry
	return item
}

func TestCheckAllItems_HealthyStockStaysSilent(t *testing.T) {
	service, alerts, _ := newInventoryFixture(stockItem("Urea", 100, 20))

	result, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.FieldsChecked)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, alerts.inventoryAlerts)
}

func TestCheckAllItems_LowStockHigh(t *testing.T) {
	service, alerts, publisher := newInventoryFixture(stockItem("Urea", 15, 20))

	result, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, models.AlertLowStock, alerts.inventoryAlerts[0].AlertType)
	assert.Equal(t, models.SeverityHigh, alerts.inventoryAlerts[0].Severity)
	assert.Equal(t, 1, publisher.inventoryEvents)
}

func TestCheckAllItems_LowStockCriticalTiers(t *testing.T) {
	// At or below half the reorder level the severity escalates.
	service, alerts, _ := newInventoryFixture(stockItem("Urea", 10, 20))
	_, err := service.CheckAllItems(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.SeverityCritical, alerts.inventoryAlerts[0].Severity)

	service, alerts, _ = newInventoryFixture(stockItem("Urea", 0, 20))
	_, err = service.CheckAllItems(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.SeverityCritical, alerts.inventoryAlerts[0].Severity)
}

func TestCheckAllItems_ExpiringSoonMedium(t *testing.T) {
	service, alerts, _ := newInventoryFixture(expiringItem("Fungicide", 5))

	result, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, models.AlertExpiringSoon, alerts.inventoryAlerts[0].AlertType)
	assert.Equal(t, models.SeverityMedium, alerts.inventoryAlerts[0].Severity)
}

func TestCheckAllItems_ExpiringInTwoDaysIsHigh(t *testing.T) {
	service, alerts, _ := newInventoryFixture(expiringItem("Fungicide", 2))

	_, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.SeverityHigh, alerts.inventoryAlerts[0].Severity)
}

func TestCheckAllItems_ExpiredCritical(t *testing.T) {
	service, alerts, _ := newInventoryFixture(expiringItem("Fungicide", -3))

	_, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.AlertExpired, alerts.inventoryAlerts[0].AlertType)
	assert.Equal(t, models.SeverityCritical, alerts.inventoryAlerts[0].Severity)
}

func TestCheckAllItems_FarExpiryStaysSilent(t *testing.T) {
	service, alerts, _ := newInventoryFixture(expiringItem("Fungicide", 30))

	result, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, alerts.inventoryAlerts)
}

// One item can raise both a stock alert and an expiry alert in the same sweep.
func TestCheckAllItems_OneItemBothAlerts(t *testing.T) {
	item := expiringItem("Insecticide", 4)
	item.Quantity = 5
	item.ReorderLevel = 20
	service, alerts, publisher := newInventoryFixture(item)

	result, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Len(t, alerts.inventoryAlerts, 2)
	assert.Equal(t, 2, publisher.inventoryEvents)
}

func TestCheckAllItems_DedupWithinWindow(t *testing.T) {
	service, alerts, _ := newInventoryFixture(stockItem("Urea", 15, 20))

	first, err := service.CheckAllItems(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := service.CheckAllItems(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Suppressed)
	assert.Len(t, alerts.inventoryAlerts, 1, "repeat sweep inside the dedup window adds nothing")
}

func TestCheckAllItems_StaleAlertDoesNotSuppress(t *testing.T) {
	item := stockItem("Urea", 15, 20)
	service, alerts, _ := newInventoryFixture(item)
	// A matching alert from before the dedup window must not suppress.
	alerts.inventoryAlerts = append(alerts.inventoryAlerts, models.InventoryAlert{
		ID:        uuid.New(),
		ItemID:    item.ID,
		AlertType: models.AlertLowStock,
		IsActive:  true,
		CreatedAt: time.Now().Add(-30 * time.Hour),
	})

	result, err := service.CheckAllItems(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

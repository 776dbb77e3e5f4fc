package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type InventoryRepository struct {
	db *sqlx.DB
}

func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
		INSERT INTO inventory_items (
			id, owner_id, name, category, quantity, unit,
			reorder_level, expiry_date, created_at, updated_at
		) VALUES (
			:id, :owner_id, :name, :category, :quantity, :unit,
			:reorder_level, :expiry_date, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		slog.Error("Failed to create inventory item", "owner_id", item.OwnerID, "error", err)
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	slog.Info("Created inventory item", "id", item.ID, "name", item.Name)
	return nil
}

func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	query := `
		SELECT id, owner_id, name, category, quantity, unit,
			reorder_level, expiry_date, created_at, updated_at
		FROM inventory_items
		WHERE id = $1`

	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("inventory item not found")
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

func (r *InventoryRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	query := `
		SELECT id, owner_id, name, category, quantity, unit,
			reorder_level, expiry_date, created_at, updated_at
		FROM inventory_items
		WHERE owner_id = $1
		ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to get inventory items by owner: %w", err)
	}
	return items, nil
}

// GetAll returns every inventory item for the daily analyzer sweep.
func (r *InventoryRepository) GetAll(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	query := `
		SELECT id, owner_id, name, category, quantity, unit,
			reorder_level, expiry_date, created_at, updated_at
		FROM inventory_items
		ORDER BY owner_id, name`

	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to get inventory items: %w", err)
	}
	return items, nil
}

func (r *InventoryRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity float64) error {
	query := `UPDATE inventory_items SET quantity = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update inventory quantity: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("inventory item not found")
	}

	slog.Info("Updated inventory quantity", "id", id, "quantity", quantity)
	return nil
}

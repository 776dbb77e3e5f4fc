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

type FieldRepository struct {
	db *sqlx.DB
}

func NewFieldRepository(db *sqlx.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

func (r *FieldRepository) Create(ctx context.Context, field *models.Field) error {
	if field.ID == uuid.Nil {
		field.ID = uuid.New()
	}
	now := time.Now()
	field.CreatedAt = now
	field.UpdatedAt = now
	if field.Status == "" {
		field.Status = models.FieldActive
	}

	query := `
		INSERT INTO fields (
			id, owner_id, field_name, field_code, center_location,
			area_sqm, soil_type, has_irrigation, status, created_at, updated_at
		) VALUES (
			:id, :owner_id, :field_name, :field_code, :center_location,
			:area_sqm, :soil_type, :has_irrigation, :status, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, field)
	if err != nil {
		slog.Error("Failed to create field", "owner_id", field.OwnerID, "error", err)
		return fmt.Errorf("failed to create field: %w", err)
	}

	slog.Info("Created field", "id", field.ID, "owner_id", field.OwnerID)
	return nil
}

func (r *FieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Field, error) {
	var field models.Field
	query := `
		SELECT id, owner_id, field_name, field_code, center_location,
			area_sqm, soil_type, has_irrigation, status, created_at, updated_at
		FROM fields
		WHERE id = $1`

	err := r.db.GetContext(ctx, &field, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("field not found")
		}
		return nil, fmt.Errorf("failed to get field: %w", err)
	}
	return &field, nil
}

func (r *FieldRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.Field, error) {
	var fields []models.Field
	query := `
		SELECT id, owner_id, field_name, field_code, center_location,
			area_sqm, soil_type, has_irrigation, status, created_at, updated_at
		FROM fields
		WHERE owner_id = $1 AND status != 'archived'
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &fields, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to get fields by owner: %w", err)
	}
	return fields, nil
}

// GetActiveFieldIDs lists fields the alert analyzer should scan.
func (r *FieldRepository) GetActiveFieldIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT id FROM fields WHERE status = 'active'`
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to get active field IDs: %w", err)
	}
	return ids, nil
}

func (r *FieldRepository) Update(ctx context.Context, field *models.Field) error {
	field.UpdatedAt = time.Now()

	query := `
		UPDATE fields SET
			field_name = :field_name,
			field_code = :field_code,
			center_location = :center_location,
			area_sqm = :area_sqm,
			soil_type = :soil_type,
			has_irrigation = :has_irrigation,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, field)
	if err != nil {
		slog.Error("Failed to update field", "id", field.ID, "error", err)
		return fmt.Errorf("failed to update field: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("field not found")
	}

	slog.Info("Updated field", "id", field.ID)
	return nil
}

// Archive soft-deletes a field; plantings and observations are kept.
func (r *FieldRepository) Archive(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE fields SET status = 'archived', updated_at = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to archive field: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("field not found")
	}

	slog.Info("Archived field", "id", id)
	return nil
}

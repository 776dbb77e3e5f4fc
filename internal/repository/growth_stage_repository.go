package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"croptask-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

const stageCatalogCacheKey = "croptask:catalog:growth_stages"
const stageCatalogCacheTTL = 6 * time.Hour

// GrowthStageRepository serves the immutable growth-stage catalog. Reads are
// cached in Redis because every scheduling tick touches the catalog.
type GrowthStageRepository struct {
	db          *sqlx.DB
	redisClient *redis.Client
}

func NewGrowthStageRepository(db *sqlx.DB, redisClient *redis.Client) *GrowthStageRepository {
	return &GrowthStageRepository{db: db, redisClient: redisClient}
}

// Create inserts a catalog entry. Only the seed loader calls this.
func (r *GrowthStageRepository) Create(ctx context.Context, stage *models.GrowthStage) error {
	if stage.ID == uuid.Nil {
		stage.ID = uuid.New()
	}
	stage.CreatedAt = time.Now()

	query := `
		INSERT INTO growth_stages (
			id, name, code, order_sequence, typical_duration_days,
			requirements, common_problems, description, created_at
		) VALUES (
			:id, :name, :code, :order_sequence, :typical_duration_days,
			:requirements, :common_problems, :description, :created_at
		)
		ON CONFLICT (code) DO NOTHING`

	_, err := r.db.NamedExecContext(ctx, query, stage)
	if err != nil {
		slog.Error("Failed to create growth stage", "code", stage.Code, "error", err)
		return fmt.Errorf("failed to create growth stage %s: %w", stage.Code, err)
	}

	r.invalidateCache(ctx)
	slog.Info("Created growth stage", "id", stage.ID, "code", stage.Code)
	return nil
}

// GetAll returns the catalog ordered by sequence, preferring the cache.
func (r *GrowthStageRepository) GetAll(ctx context.Context) ([]models.GrowthStage, error) {
	if stages, ok := r.readCache(ctx); ok {
		return stages, nil
	}

	var stages []models.GrowthStage
	query := `
		SELECT id, name, code, order_sequence, typical_duration_days,
			requirements, common_problems, description, created_at
		FROM growth_stages
		ORDER BY order_sequence ASC`

	if err := r.db.SelectContext(ctx, &stages, query); err != nil {
		slog.Error("Failed to get growth stages", "error", err)
		return nil, fmt.Errorf("failed to get growth stages: %w", err)
	}

	r.writeCache(ctx, stages)
	slog.Debug("Loaded growth stage catalog from database", "count", len(stages))
	return stages, nil
}

func (r *GrowthStageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GrowthStage, error) {
	var stage models.GrowthStage
	query := `
		SELECT id, name, code, order_sequence, typical_duration_days,
			requirements, common_problems, description, created_at
		FROM growth_stages
		WHERE id = $1`

	err := r.db.GetContext(ctx, &stage, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("growth stage not found")
		}
		return nil, fmt.Errorf("failed to get growth stage: %w", err)
	}
	return &stage, nil
}

func (r *GrowthStageRepository) GetByCode(ctx context.Context, code string) (*models.GrowthStage, error) {
	var stage models.GrowthStage
	query := `
		SELECT id, name, code, order_sequence, typical_duration_days,
			requirements, common_problems, description, created_at
		FROM growth_stages
		WHERE code = $1`

	err := r.db.GetContext(ctx, &stage, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("growth stage not found")
		}
		return nil, fmt.Errorf("failed to get growth stage by code: %w", err)
	}
	return &stage, nil
}

// NextStage returns the stage following the given one in catalog order, or
// nil at the end of the sequence.
func (r *GrowthStageRepository) NextStage(ctx context.Context, current *models.GrowthStage) (*models.GrowthStage, error) {
	stages, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stages {
		if stages[i].ID == current.ID && i+1 < len(stages) {
			return &stages[i+1], nil
		}
	}
	return nil, nil
}

// PreviousStage returns the stage preceding the given one, or nil at the
// start of the sequence.
func (r *GrowthStageRepository) PreviousStage(ctx context.Context, current *models.GrowthStage) (*models.GrowthStage, error) {
	stages, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stages {
		if stages[i].ID == current.ID && i > 0 {
			return &stages[i-1], nil
		}
	}
	return nil, nil
}

func (r *GrowthStageRepository) readCache(ctx context.Context) ([]models.GrowthStage, bool) {
	if r.redisClient == nil {
		return nil, false
	}
	raw, err := r.redisClient.Get(ctx, stageCatalogCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var stages []models.GrowthStage
	if err := json.Unmarshal(raw, &stages); err != nil {
		slog.Warn("Failed to decode cached growth stage catalog", "error", err)
		return nil, false
	}
	return stages, true
}

func (r *GrowthStageRepository) writeCache(ctx context.Context, stages []models.GrowthStage) {
	if r.redisClient == nil || len(stages) == 0 {
		return
	}
	raw, err := json.Marshal(stages)
	if err != nil {
		return
	}
	if err := r.redisClient.Set(ctx, stageCatalogCacheKey, raw, stageCatalogCacheTTL).Err(); err != nil {
		slog.Warn("Failed to cache growth stage catalog", "error", err)
	}
}

func (r *GrowthStageRepository) invalidateCache(ctx context.Context) {
	if r.redisClient == nil {
		return
	}
	if err := r.redisClient.Del(ctx, stageCatalogCacheKey).Err(); err != nil {
		slog.Warn("Failed to invalidate growth stage catalog cache", "error", err)
	}
}

package repository

import (
	"context"

	"kraisys/internal/model"

	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	CreateTx(tx *gorm.DB, h *model.MaterialPriceHistory) error
	ListByMaterial(ctx context.Context, materialID int64, page, limit int) ([]model.MaterialPriceHistory, int64, error)
}

type priceHistoryRepo struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) CreateTx(tx *gorm.DB, h *model.MaterialPriceHistory) error {
	return tx.Create(h).Error
}

// ListByMaterial returns paginated price-change records for one material,
// ordered newest-first (append-only table, so this reflects natural insert order).
func (r *priceHistoryRepo) ListByMaterial(
	ctx context.Context,
	materialID int64,
	page, limit int,
) ([]model.MaterialPriceHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.MaterialPriceHistory{}).
		Where("material_id = ?", materialID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.MaterialPriceHistory
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

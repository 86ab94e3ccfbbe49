package service

import (
	"context"
	"errors"
	"time"

	"kraisys/internal/dto"
	"kraisys/internal/model"
	"kraisys/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecostEnqueuer pushes an async recost job for every variant specification
// referencing a material. Implemented by the Redis-backed worker dispatcher;
// kept as an interface so the service layer stays queue-agnostic.
type RecostEnqueuer interface {
	EnqueueRecost(ctx context.Context, materialID int64) error
}

// MaterialService handles material price changes. Every change appends an
// immutable history row in the same transaction as the price update, then
// enqueues a recost job so that variant specifications referencing the
// material get their persisted total_material_cost brought back in line with
// the new price.
type MaterialService interface {
	UpdatePrice(ctx context.Context, materialID int64, changedBy string, req dto.UpdateMaterialPriceRequest) error
	ListPriceHistory(ctx context.Context, materialID int64, page, limit int) (*dto.PriceHistoryResponse, error)
}

type materialService struct {
	catalogRepo repository.CatalogRepository
	historyRepo repository.PriceHistoryRepository
	catalog     CatalogService
	dispatcher  RecostEnqueuer
}

func NewMaterialService(
	catalogRepo repository.CatalogRepository,
	historyRepo repository.PriceHistoryRepository,
	catalog CatalogService,
	dispatcher RecostEnqueuer,
) MaterialService {
	return &materialService{
		catalogRepo: catalogRepo,
		historyRepo: historyRepo,
		catalog:     catalog,
		dispatcher:  dispatcher,
	}
}

func (s *materialService) UpdatePrice(ctx context.Context, materialID int64, changedBy string, req dto.UpdateMaterialPriceRequest) error {
	if req.Price.IsNegative() {
		return &ValidationError{Fields: map[string]string{"price": "price cannot be negative"}}
	}

	recs, err := s.catalogRepo.FindByIDs(ctx, model.KindMaterial, []int64{materialID})
	if err != nil {
		return &PersistenceError{Op: "load material", Err: err}
	}
	if len(recs) == 0 {
		return errors.New("material not found")
	}
	oldPrice := decimal.Zero
	if recs[0].Price != nil {
		oldPrice = *recs[0].Price
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}

	txErr := runTx(ctx, s.catalogRepo.DB(), func(tx *gorm.DB) error {
		if err := s.catalogRepo.UpdatePriceTx(tx, materialID, req.Price); err != nil {
			return err
		}
		return s.historyRepo.CreateTx(tx, &model.MaterialPriceHistory{
			MaterialID: materialID,
			PriceOld:   oldPrice,
			PriceNew:   req.Price,
			Reason:     reason,
			ChangedBy:  changedBy,
		})
	})
	if txErr != nil {
		return &PersistenceError{Op: "update material price", Err: txErr}
	}

	// Stale cached catalog would keep serving the old price.
	if s.catalog != nil {
		s.catalog.Invalidate(model.KindMaterial)
	}

	// Async recost of affected variants, fire and forget.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueRecost(ctx, materialID)
	}
	return nil
}

func (s *materialService) ListPriceHistory(ctx context.Context, materialID int64, page, limit int) (*dto.PriceHistoryResponse, error) {
	rows, total, err := s.historyRepo.ListByMaterial(ctx, materialID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PriceHistoryItem, len(rows))
	for i, h := range rows {
		items[i] = dto.PriceHistoryItem{
			ID:        h.ID,
			PriceOld:  h.PriceOld,
			PriceNew:  h.PriceNew,
			Reason:    h.Reason,
			ChangedBy: h.ChangedBy,
			CreatedAt: h.CreatedAt.Format(time.RFC3339),
		}
	}
	return &dto.PriceHistoryResponse{
		Data:  items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

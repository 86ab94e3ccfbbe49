package service

import (
	"context"
	"encoding/json"
	"time"

	"kraisys/internal/dto"
	"kraisys/internal/model"
	"kraisys/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CatalogService is the read-only option catalog consulted by the resolution
// engine plus the maintenance operations that mutate the reference tables.
// Reads go through a Redis read-through cache; every mutation invalidates the
// affected kind's cache entry.
type CatalogService interface {
	ListActive(ctx context.Context, kind model.CatalogKind) ([]model.CatalogRecord, error)
	// ResolveNames maps ids to (id, name) pairs in the given order. Ids not
	// present in the catalog are silently dropped, never fabricated.
	ResolveNames(ctx context.Context, kind model.CatalogKind, ids []int64) ([]dto.CatalogOption, error)
	// CuttingMaterials lists the LEATHER/LINING material subset offered for
	// variant cutting-part material choices.
	CuttingMaterials(ctx context.Context) ([]model.CatalogRecord, error)
	MaterialPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)

	CreateRecord(ctx context.Context, kind model.CatalogKind, req dto.CreateCatalogRecordRequest) (*model.CatalogRecord, error)
	UpdateRecord(ctx context.Context, kind model.CatalogKind, id int64, req dto.UpdateCatalogRecordRequest) error
	// Invalidate drops the kind's cache entry after an out-of-band mutation
	// (e.g. a price update going through MaterialService).
	Invalidate(kind model.CatalogKind)
}

type catalogService struct {
	repo     repository.CatalogRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewCatalogService(repo repository.CatalogRepository, rdb *redis.Client, cacheTTL time.Duration) CatalogService {
	return &catalogService{repo: repo, rdb: rdb, cacheTTL: cacheTTL}
}

func cacheKey(kind model.CatalogKind) string { return "catalog:" + string(kind) }

func (s *catalogService) ListActive(ctx context.Context, kind model.CatalogKind) ([]model.CatalogRecord, error) {
	// Cache hit path - rdb is nil in unit tests, cache is simply skipped
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey(kind)).Bytes(); err == nil {
			var recs []model.CatalogRecord
			if jsonErr := json.Unmarshal(cached, &recs); jsonErr == nil {
				return recs, nil
			}
		}
	}

	recs, err := s.repo.ListActive(ctx, kind)
	if err != nil {
		return nil, err
	}

	// Populate cache - best effort, ignore errors
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(recs); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), cacheKey(kind), b, s.cacheTTL).Err()
		}
	}
	return recs, nil
}

func (s *catalogService) ResolveNames(ctx context.Context, kind model.CatalogKind, ids []int64) ([]dto.CatalogOption, error) {
	if len(ids) == 0 {
		return []dto.CatalogOption{}, nil
	}
	recs, err := s.ListActive(ctx, kind)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.CatalogRecord, len(recs))
	for _, r := range recs {
		byID[r.ID] = r
	}
	out := make([]dto.CatalogOption, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, dto.CatalogOption{ID: r.ID, Code: r.Code, Name: r.Name})
		}
	}
	return out, nil
}

func (s *catalogService) CuttingMaterials(ctx context.Context) ([]model.CatalogRecord, error) {
	return s.repo.ListMaterialsByGroup(ctx, model.MaterialGroupLeather, model.MaterialGroupLining)
}

func (s *catalogService) MaterialPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	return s.repo.MaterialPrices(ctx, ids)
}

func (s *catalogService) CreateRecord(ctx context.Context, kind model.CatalogKind, req dto.CreateCatalogRecordRequest) (*model.CatalogRecord, error) {
	rec := &model.CatalogRecord{
		Code:       req.Code,
		Name:       req.Name,
		Category:   req.Category,
		Unit:       req.Unit,
		Price:      req.Price,
		DefaultQty: req.DefaultQty,
	}
	if err := s.repo.Create(ctx, kind, rec, req.GroupType); err != nil {
		return nil, err
	}
	s.Invalidate(kind)
	return rec, nil
}

func (s *catalogService) UpdateRecord(ctx context.Context, kind model.CatalogKind, id int64, req dto.UpdateCatalogRecordRequest) error {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Unit != nil {
		fields["unit"] = *req.Unit
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.DefaultQty != nil {
		fields["default_qty"] = *req.DefaultQty
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, kind, id, fields); err != nil {
		return err
	}
	s.Invalidate(kind)
	return nil
}

func (s *catalogService) Invalidate(kind model.CatalogKind) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(context.Background(), cacheKey(kind)).Err()
}

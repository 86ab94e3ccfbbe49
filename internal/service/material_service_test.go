package service

import (
	"context"
	"errors"
	"testing"

	"kraisys/internal/dto"
	"kraisys/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory CatalogRepository stub ─────────────────────────────────────────

type stubCatalogRepo struct {
	materials map[int64]*model.CatalogRecord
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{materials: make(map[int64]*model.CatalogRecord)}
}

func (r *stubCatalogRepo) ListActive(_ context.Context, kind model.CatalogKind) ([]model.CatalogRecord, error) {
	var out []model.CatalogRecord
	if kind == model.KindMaterial {
		for _, m := range r.materials {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) FindByIDs(_ context.Context, kind model.CatalogKind, ids []int64) ([]model.CatalogRecord, error) {
	var out []model.CatalogRecord
	if kind != model.KindMaterial {
		return out, nil
	}
	for _, id := range ids {
		if m, ok := r.materials[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) ListMaterialsByGroup(context.Context, ...string) ([]model.CatalogRecord, error) {
	return nil, nil
}

func (r *stubCatalogRepo) MaterialPrices(_ context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, id := range ids {
		if m, ok := r.materials[id]; ok {
			if m.Price != nil {
				out[id] = *m.Price
			} else {
				out[id] = decimal.Zero
			}
		}
	}
	return out, nil
}

func (r *stubCatalogRepo) Create(_ context.Context, _ model.CatalogKind, rec *model.CatalogRecord, _ string) error {
	r.materials[rec.ID] = rec
	return nil
}

func (r *stubCatalogRepo) Update(context.Context, model.CatalogKind, int64, map[string]interface{}) error {
	return nil
}

func (r *stubCatalogRepo) UpdatePriceTx(_ *gorm.DB, materialID int64, price decimal.Decimal) error {
	m, ok := r.materials[materialID]
	if !ok {
		return errors.New("record not found")
	}
	p := price
	m.Price = &p
	return nil
}

func (r *stubCatalogRepo) DB() *gorm.DB { return nil }

// ── History / enqueuer stubs ─────────────────────────────────────────────────

type stubHistoryRepo struct {
	rows []model.MaterialPriceHistory
}

func (r *stubHistoryRepo) CreateTx(_ *gorm.DB, h *model.MaterialPriceHistory) error {
	h.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubHistoryRepo) ListByMaterial(_ context.Context, materialID int64, _, _ int) ([]model.MaterialPriceHistory, int64, error) {
	var out []model.MaterialPriceHistory
	for _, h := range r.rows {
		if h.MaterialID == materialID {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

type stubEnqueuer struct {
	materialIDs []int64
}

func (e *stubEnqueuer) EnqueueRecost(_ context.Context, materialID int64) error {
	e.materialIDs = append(e.materialIDs, materialID)
	return nil
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestUpdatePriceWritesHistoryAndEnqueuesRecost(t *testing.T) {
	repo := newStubCatalogRepo()
	old := dec("120")
	repo.materials[4] = &model.CatalogRecord{ID: 4, Name: "calf leather", Price: &old}
	history := &stubHistoryRepo{}
	enq := &stubEnqueuer{}
	svc := NewMaterialService(repo, history, nil, enq)

	err := svc.UpdatePrice(context.Background(), 4, "tester", dto.UpdateMaterialPriceRequest{
		Price: dec("130"),
	})
	require.NoError(t, err)

	assert.True(t, dec("130").Equal(*repo.materials[4].Price))

	require.Len(t, history.rows, 1)
	assert.True(t, dec("120").Equal(history.rows[0].PriceOld))
	assert.True(t, dec("130").Equal(history.rows[0].PriceNew))
	assert.Equal(t, "manual", history.rows[0].Reason, "reason defaults to manual")
	assert.Equal(t, "tester", history.rows[0].ChangedBy)

	assert.Equal(t, []int64{4}, enq.materialIDs)
}

func TestUpdatePriceRejectsNegative(t *testing.T) {
	svc := NewMaterialService(newStubCatalogRepo(), &stubHistoryRepo{}, nil, &stubEnqueuer{})

	err := svc.UpdatePrice(context.Background(), 4, "tester", dto.UpdateMaterialPriceRequest{
		Price: dec("-1"),
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "price")
}

func TestUpdatePriceUnknownMaterial(t *testing.T) {
	svc := NewMaterialService(newStubCatalogRepo(), &stubHistoryRepo{}, nil, &stubEnqueuer{})

	err := svc.UpdatePrice(context.Background(), 99, "tester", dto.UpdateMaterialPriceRequest{
		Price: dec("10"),
	})
	assert.Error(t, err)
}

func TestListPriceHistory(t *testing.T) {
	history := &stubHistoryRepo{}
	_ = history.CreateTx(nil, &model.MaterialPriceHistory{
		MaterialID: 4, PriceOld: dec("100"), PriceNew: dec("120"), Reason: "import",
	})
	svc := NewMaterialService(newStubCatalogRepo(), history, nil, &stubEnqueuer{})

	resp, err := svc.ListPriceHistory(context.Background(), 4, 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "import", resp.Data[0].Reason)
	assert.Equal(t, int64(1), resp.Total)
}

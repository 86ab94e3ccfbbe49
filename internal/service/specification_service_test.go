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

// ── In-memory SpecificationRepository stub ───────────────────────────────────

type stubSpecRepo struct {
	specs  map[int64]*model.Specification
	nextID int64
}

func newStubSpecRepo() *stubSpecRepo {
	return &stubSpecRepo{specs: make(map[int64]*model.Specification), nextID: 1}
}

func (r *stubSpecRepo) add(s model.Specification) *model.Specification {
	if s.ID == 0 {
		s.ID = r.nextID
		r.nextID++
	} else if s.ID >= r.nextID {
		r.nextID = s.ID + 1
	}
	r.specs[s.ID] = &s
	return r.specs[s.ID]
}

func (r *stubSpecRepo) FindByID(_ context.Context, id int64) (*model.Specification, error) {
	s, ok := r.specs[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *s
	return &cp, nil
}

func (r *stubSpecRepo) FindBase(_ context.Context, modelID int64) (*model.Specification, error) {
	for _, s := range r.specs {
		if s.ModelID == modelID && s.IsDefault && s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *stubSpecRepo) ListVariants(_ context.Context, modelID int64) ([]model.Specification, error) {
	var out []model.Specification
	for _, s := range r.specs {
		if s.ModelID == modelID && !s.IsDefault && s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSpecRepo) CountVariants(_ context.Context, modelID int64) (int64, error) {
	var n int64
	for _, s := range r.specs {
		if s.ModelID == modelID && !s.IsDefault && s.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *stubSpecRepo) ListVariantsByMaterial(_ context.Context, materialID int64) ([]model.Specification, error) {
	var out []model.Specification
	for _, s := range r.specs {
		if s.IsDefault || !s.IsActive {
			continue
		}
		for _, p := range s.CuttingParts {
			if p.MaterialID != nil && *p.MaterialID == materialID {
				out = append(out, *s)
				break
			}
		}
	}
	return out, nil
}

func (r *stubSpecRepo) Create(_ context.Context, s *model.Specification) error {
	*s = *r.add(*s)
	return nil
}

func (r *stubSpecRepo) Update(_ context.Context, s *model.Specification) error {
	r.specs[s.ID] = s
	return nil
}

func (r *stubSpecRepo) CreateTx(_ *gorm.DB, s *model.Specification) error {
	*s = *r.add(*s)
	return nil
}

func (r *stubSpecRepo) SaveTx(_ *gorm.DB, s *model.Specification) error {
	cp := *s
	r.specs[s.ID] = &cp
	return nil
}

func (r *stubSpecRepo) UpdateTotalCostTx(_ *gorm.DB, id int64, total decimal.Decimal) error {
	s, ok := r.specs[id]
	if !ok {
		return errors.New("record not found")
	}
	s.TotalMaterialCost = total
	return nil
}

func (r *stubSpecRepo) DB() *gorm.DB { return nil }

// ── CatalogService stub ──────────────────────────────────────────────────────

type stubCatalog struct {
	names  map[model.CatalogKind]map[int64]string
	recs   map[model.CatalogKind][]model.CatalogRecord
	prices map[int64]decimal.Decimal
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		names:  make(map[model.CatalogKind]map[int64]string),
		recs:   make(map[model.CatalogKind][]model.CatalogRecord),
		prices: make(map[int64]decimal.Decimal),
	}
}

func (c *stubCatalog) name(kind model.CatalogKind, id int64, name string) {
	if c.names[kind] == nil {
		c.names[kind] = make(map[int64]string)
	}
	c.names[kind][id] = name
}

func (c *stubCatalog) record(kind model.CatalogKind, rec model.CatalogRecord) {
	c.recs[kind] = append(c.recs[kind], rec)
}

func (c *stubCatalog) ListActive(_ context.Context, kind model.CatalogKind) ([]model.CatalogRecord, error) {
	var out []model.CatalogRecord
	for id, n := range c.names[kind] {
		out = append(out, model.CatalogRecord{ID: id, Name: n})
	}
	return append(out, c.recs[kind]...), nil
}

func (c *stubCatalog) ResolveNames(_ context.Context, kind model.CatalogKind, ids []int64) ([]dto.CatalogOption, error) {
	var out []dto.CatalogOption
	for _, id := range ids {
		if n, ok := c.names[kind][id]; ok {
			out = append(out, dto.CatalogOption{ID: id, Name: n})
		}
	}
	return out, nil
}

func (c *stubCatalog) CuttingMaterials(_ context.Context) ([]model.CatalogRecord, error) {
	return c.ListActive(context.Background(), model.KindMaterial)
}

func (c *stubCatalog) MaterialPrices(_ context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, id := range ids {
		if p, ok := c.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *stubCatalog) CreateRecord(context.Context, model.CatalogKind, dto.CreateCatalogRecordRequest) (*model.CatalogRecord, error) {
	return nil, errors.New("not supported in stub")
}

func (c *stubCatalog) UpdateRecord(context.Context, model.CatalogKind, int64, dto.UpdateCatalogRecordRequest) error {
	return errors.New("not supported in stub")
}

func (c *stubCatalog) Invalidate(model.CatalogKind) {}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func fixtureBase(repo *stubSpecRepo) *model.Specification {
	return repo.add(model.Specification{
		ModelID:        1,
		Version:        1,
		IsDefault:      true,
		IsActive:       true,
		PerforationIDs: model.OptionIDs{1, 2, 3},
		LiningIDs:      model.OptionIDs{5},
		LastingTypeID:  int64p(2),
		CuttingParts: model.CuttingPartList{
			{Name: "vamp", Quantity: 2, Consumption: 3.5, Notes: "grain out"},
			{Name: "quarter", Quantity: 2, Consumption: 2.1},
		},
	})
}

func fixtureCatalog() *stubCatalog {
	cat := newStubCatalog()
	cat.name(model.KindPerforation, 1, "full brogue")
	cat.name(model.KindPerforation, 2, "half brogue")
	cat.name(model.KindPerforation, 3, "plain")
	cat.name(model.KindLining, 5, "pig lining")
	cat.name(model.KindMaterial, 4, "calf leather")
	cat.prices[4] = dec("120")
	return cat
}

// ── Loading ──────────────────────────────────────────────────────────────────

func TestLoadForVariantCreationPrefillsEditor(t *testing.T) {
	repo := newStubSpecRepo()
	base := fixtureBase(repo)
	svc := NewSpecificationService(repo, fixtureCatalog())

	editor, err := svc.LoadForVariantCreation(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, string(DraftEditable), editor.State)
	assert.Equal(t, base.ID, editor.BaseSpecID)
	assert.Zero(t, editor.SpecID)
	assert.Equal(t, int64p(2), editor.LastingTypeID)

	require.Len(t, editor.AllowedPerforations, 3)
	assert.Equal(t, "full brogue", editor.AllowedPerforations[0].Name)
	require.Len(t, editor.AllowedLinings, 1)
	assert.Equal(t, int64(5), editor.AllowedLinings[0].ID)

	require.Len(t, editor.CuttingParts, 2)
	for _, p := range editor.CuttingParts {
		assert.True(t, p.Locked)
		assert.Nil(t, p.MaterialID)
	}
}

func TestLoadForVariantCreationNormalizesLegacyScalarBase(t *testing.T) {
	repo := newStubSpecRepo()
	repo.add(model.Specification{
		ModelID:       2,
		IsDefault:     true,
		IsActive:      true,
		PerforationID: int64p(3),
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	editor, err := svc.LoadForVariantCreation(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, editor.AllowedPerforations, 1)
	assert.Equal(t, int64(3), editor.AllowedPerforations[0].ID)
	assert.Empty(t, editor.AllowedLinings)
}

func TestLoadForVariantCreationWithoutBase(t *testing.T) {
	svc := NewSpecificationService(newStubSpecRepo(), fixtureCatalog())

	_, err := svc.LoadForVariantCreation(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBaseSpecNotFound)
}

func TestLoadForVariantEditKeepsOwnParts(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	variant := repo.add(model.Specification{
		ModelID:     1,
		IsActive:    true,
		VariantName: "Autumn",
		CuttingParts: model.CuttingPartList{
			{Name: "vamp", Quantity: 2, Consumption: 3.6, MaterialID: int64p(4)},
			{Name: "medallion", Quantity: 1, Consumption: 0.2},
		},
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	editor, err := svc.LoadForVariantEdit(context.Background(), variant.ID)
	require.NoError(t, err)

	// The variant's own rows are used untouched - inheritance ran once at
	// creation and is never re-applied.
	require.Len(t, editor.CuttingParts, 2)
	assert.Equal(t, 3.6, editor.CuttingParts[0].Consumption)
	assert.True(t, editor.CuttingParts[0].Locked, "base-named row stays locked")
	assert.False(t, editor.CuttingParts[1].Locked, "appended row stays editable")
}

func TestLoadForVariantEditInheritsWhenVariantHasNoParts(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	variant := repo.add(model.Specification{ModelID: 1, IsActive: true, VariantName: "Empty"})
	svc := NewSpecificationService(repo, fixtureCatalog())

	editor, err := svc.LoadForVariantEdit(context.Background(), variant.ID)
	require.NoError(t, err)
	require.Len(t, editor.CuttingParts, 2)
	assert.True(t, editor.CuttingParts[0].Locked)
}

// ── Saving ───────────────────────────────────────────────────────────────────

func saveRequest() dto.SaveVariantRequest {
	return dto.SaveVariantRequest{
		ModelID:       1,
		VariantName:   "Autumn",
		PerforationID: int64p(2),
		LiningID:      int64p(5),
		CuttingParts: []dto.VariantCuttingPart{
			{Name: "vamp", Quantity: 2, Consumption: 3.5, MaterialID: int64p(4)},
			{Name: "quarter", Quantity: 2, Consumption: 2.1},
		},
	}
}

func TestSaveVariantCreatesRowWithAggregatedCost(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	svc := NewSpecificationService(repo, fixtureCatalog())

	resp, err := svc.SaveVariant(context.Background(), saveRequest())
	require.NoError(t, err)

	// 3.5 x 120 = 420; the unmaterialized quarter row contributes nothing.
	assert.True(t, dec("420").Equal(resp.TotalMaterialCost), "got %s", resp.TotalMaterialCost)
	assert.Equal(t, "VAR-1-1", resp.VariantCode)
	assert.False(t, resp.IsDefault)

	require.Len(t, resp.MaterialTotals, 1)
	assert.Equal(t, int64(4), resp.MaterialTotals[0].MaterialID)
	assert.True(t, dec("3.5").Equal(resp.MaterialTotals[0].Consumption))

	// Material names are resolved into the persisted rows.
	require.NotNil(t, resp.CuttingParts[0].Material)
	assert.Equal(t, "calf leather", *resp.CuttingParts[0].Material)

	persisted, err := repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, dec("420").Equal(persisted.TotalMaterialCost),
		"persisted total must come from the same computation as the parts")
}

func TestSaveVariantUpdatesExistingRow(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	variant := repo.add(model.Specification{
		ModelID: 1, IsActive: true, VariantName: "Old", VariantCode: "VAR-1-1",
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	req := saveRequest()
	req.SpecID = variant.ID
	req.VariantCode = "VAR-1-1"
	req.VariantName = "Renamed"

	resp, err := svc.SaveVariant(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, variant.ID, resp.ID)
	assert.Equal(t, "Renamed", resp.VariantName)

	persisted, _ := repo.FindByID(context.Background(), variant.ID)
	assert.Equal(t, "Renamed", persisted.VariantName)
}

func TestSaveVariantRefusesToOverwriteBase(t *testing.T) {
	repo := newStubSpecRepo()
	base := fixtureBase(repo)
	svc := NewSpecificationService(repo, fixtureCatalog())

	req := saveRequest()
	req.SpecID = base.ID

	_, err := svc.SaveVariant(context.Background(), req)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "spec_id")
}

func TestSaveVariantRejectsCrossModelUpdate(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo) // model 1, allowed perforations {1,2,3}
	// Model 2's base declares no allowed sets at all.
	repo.add(model.Specification{ModelID: 2, IsDefault: true, IsActive: true})
	variant := repo.add(model.Specification{
		ModelID: 1, IsActive: true,
		VariantName: "Autumn", VariantCode: "VAR-1-1",
		PerforationID: int64p(2),
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	// Addressing the model-1 variant through model 2 must not let the save
	// validate against model 2's (empty) allowed sets.
	req := saveRequest()
	req.ModelID = 2
	req.SpecID = variant.ID
	req.PerforationID = int64p(77)

	_, err := svc.SaveVariant(context.Background(), req)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "model_id")

	stored, err := repo.FindByID(context.Background(), variant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ModelID)
	require.NotNil(t, stored.PerforationID)
	assert.Equal(t, int64(2), *stored.PerforationID)
}

func TestSaveVariantEnforcesAllowedOptionSets(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	svc := NewSpecificationService(repo, fixtureCatalog())

	req := saveRequest()
	req.PerforationID = int64p(9) // not in {1,2,3}
	req.LiningID = int64p(6)      // not in {5}

	_, err := svc.SaveVariant(context.Background(), req)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "perforation_id")
	assert.Contains(t, vErr.Fields, "lining_id")
}

func TestSaveVariantEmptyAllowedSetMeansFreeChoice(t *testing.T) {
	repo := newStubSpecRepo()
	repo.add(model.Specification{
		ModelID: 3, IsDefault: true, IsActive: true,
		CuttingParts: model.CuttingPartList{{Name: "vamp", Quantity: 2, Consumption: 1}},
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	req := saveRequest()
	req.ModelID = 3
	req.PerforationID = int64p(77)
	req.LiningID = nil

	_, err := svc.SaveVariant(context.Background(), req)
	assert.NoError(t, err)
}

func TestSaveVariantValidation(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	svc := NewSpecificationService(repo, fixtureCatalog())

	req := saveRequest()
	req.VariantName = ""
	req.CuttingParts = []dto.VariantCuttingPart{
		{Name: "vamp", Quantity: 0, Consumption: 1},
		{Name: "vamp", Quantity: 1, Consumption: 1},
	}

	_, err := svc.SaveVariant(context.Background(), req)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "variant_name")
	assert.Contains(t, vErr.Fields, "cutting_parts[0].quantity")
	assert.Contains(t, vErr.Fields, "cutting_parts[1].name")
}

func TestSaveVariantWithoutBase(t *testing.T) {
	svc := NewSpecificationService(newStubSpecRepo(), fixtureCatalog())

	_, err := svc.SaveVariant(context.Background(), saveRequest())
	assert.ErrorIs(t, err, ErrBaseSpecNotFound)
}

func TestAppendPartResolvesTemplate(t *testing.T) {
	qty := 2
	cat := fixtureCatalog()
	cat.record(model.KindCuttingPart, model.CatalogRecord{ID: 31, Code: "TNG", Name: "tongue", DefaultQty: &qty})
	svc := NewSpecificationService(newStubSpecRepo(), cat)

	parts := []dto.VariantCuttingPart{{Name: "vamp", Quantity: 2, Locked: true}}
	out, err := svc.AppendPart(context.Background(), 31, parts)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "tongue", out[1].Name)
	assert.Equal(t, 2, out[1].Quantity)
	assert.False(t, out[1].Locked)
}

func TestAppendPartUnknownTemplate(t *testing.T) {
	svc := NewSpecificationService(newStubSpecRepo(), fixtureCatalog())

	_, err := svc.AppendPart(context.Background(), 99, nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "template_id")
}

func TestAppendPartRejectsDuplicateName(t *testing.T) {
	cat := fixtureCatalog()
	cat.record(model.KindCuttingPart, model.CatalogRecord{ID: 31, Name: "vamp"})
	svc := NewSpecificationService(newStubSpecRepo(), cat)

	_, err := svc.AppendPart(context.Background(), 31, []dto.VariantCuttingPart{{Name: "vamp", Quantity: 2}})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "cutting_parts")
}

// ── Base specification ───────────────────────────────────────────────────────

func TestSaveBaseWritesCanonicalLists(t *testing.T) {
	repo := newStubSpecRepo()
	repo.add(model.Specification{
		ModelID: 1, IsDefault: true, IsActive: true,
		PerforationID: int64p(1), // legacy scalar era row
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	resp, err := svc.SaveBase(context.Background(), 1, dto.SaveBaseSpecificationRequest{
		PerforationIDs: []int64{1, 2},
		LiningIDs:      []int64{5},
		CuttingParts:   []model.CuttingPartEntry{{Name: "vamp", Quantity: 2, Consumption: 3.5}},
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, resp.PerforationIDs)
	assert.Equal(t, []int64{5}, resp.LiningIDs)
	// Base rows expose allowed sets only in list form.
	assert.Nil(t, resp.PerforationID)
}

func TestDeactivateBaseGuardedByVariants(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	repo.add(model.Specification{ModelID: 1, IsActive: true, VariantName: "V1"})
	svc := NewSpecificationService(repo, fixtureCatalog())

	err := svc.DeactivateBase(context.Background(), 1)
	assert.ErrorIs(t, err, ErrVariantsExist)
}

func TestDeactivateBaseWithoutVariants(t *testing.T) {
	repo := newStubSpecRepo()
	base := fixtureBase(repo)
	svc := NewSpecificationService(repo, fixtureCatalog())

	require.NoError(t, svc.DeactivateBase(context.Background(), 1))
	assert.False(t, repo.specs[base.ID].IsActive)
}

// ── Recosting ────────────────────────────────────────────────────────────────

func TestRecostByMaterialUpdatesStaleTotals(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	variant := repo.add(model.Specification{
		ModelID: 1, IsActive: true, VariantName: "Autumn",
		CuttingParts: model.CuttingPartList{
			{Name: "vamp", Quantity: 2, Consumption: 3.5, MaterialID: int64p(4)},
		},
		TotalMaterialCost: dec("420"), // computed when the price was 120
	})

	cat := fixtureCatalog()
	cat.prices[4] = dec("130")
	svc := NewSpecificationService(repo, cat)

	updated, err := svc.RecostByMaterial(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.True(t, dec("455").Equal(repo.specs[variant.ID].TotalMaterialCost))
}

func TestRecostByMaterialSkipsUpToDateTotals(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	repo.add(model.Specification{
		ModelID: 1, IsActive: true, VariantName: "Autumn",
		CuttingParts: model.CuttingPartList{
			{Name: "vamp", Quantity: 2, Consumption: 3.5, MaterialID: int64p(4)},
		},
		TotalMaterialCost: dec("420"),
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	updated, err := svc.RecostByMaterial(context.Background(), 4)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestListVariants(t *testing.T) {
	repo := newStubSpecRepo()
	fixtureBase(repo)
	repo.add(model.Specification{
		ModelID: 1, IsActive: true, VariantName: "Autumn", VariantCode: "VAR-1-1",
		CuttingParts:      model.CuttingPartList{{Name: "vamp", Quantity: 2}},
		TotalMaterialCost: dec("420"),
	})
	svc := NewSpecificationService(repo, fixtureCatalog())

	items, err := svc.ListVariants(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Autumn", items[0].VariantName)
	assert.Equal(t, 1, items[0].CuttingPartCount)
}

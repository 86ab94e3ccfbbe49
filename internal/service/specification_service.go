package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"kraisys/internal/dto"
	"kraisys/internal/model"
	"kraisys/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DraftState tracks a variant draft through its lifecycle:
//
//	Uninitialized → LoadingBase → Editable → Validated → Persisted
//
// A failure during LoadingBase or the persist step moves the draft to
// DraftError and leaves the last successful state's data untouched - no
// partial writes, a save failure keeps the editable data so the user can
// retry. Cancellation is simply discarding an Editable draft.
type DraftState string

const (
	DraftUninitialized DraftState = "uninitialized"
	DraftLoadingBase   DraftState = "loading_base"
	DraftEditable      DraftState = "editable"
	DraftValidated     DraftState = "validated"
	DraftPersisted     DraftState = "persisted"
	DraftError         DraftState = "error"
)

// SpecificationService resolves (base specification, variant input) pairs
// into persistable variant specifications, and persisted rows back into
// fully-populated editable view-models. This is the single home of the
// resolution logic - one implementation, however many clients render it.
type SpecificationService interface {
	// LoadForVariantCreation prefills an editable draft for a new variant of
	// the model: allowed option sets from the base record, cutting parts
	// inherited with locked names and unset material slots.
	LoadForVariantCreation(ctx context.Context, modelID int64) (*dto.VariantEditor, error)
	// LoadForVariantEdit reopens a persisted variant. The variant's own
	// cutting parts are used as-is - inheritance ran once at creation and is
	// never re-applied.
	LoadForVariantEdit(ctx context.Context, specID int64) (*dto.VariantEditor, error)
	// SaveVariant validates the edits, aggregates material costs and writes
	// the row in one transaction. The persisted total_material_cost always
	// derives from the same transaction's cutting parts.
	SaveVariant(ctx context.Context, req dto.SaveVariantRequest) (*dto.SpecificationResponse, error)
	// AppendPart resolves a cutting-part template and appends it to the
	// draft's part list: template name, default quantity, unlocked row.
	// A name already present in the list is rejected.
	AppendPart(ctx context.Context, templateID int64, parts []dto.VariantCuttingPart) ([]dto.VariantCuttingPart, error)

	GetSpecification(ctx context.Context, id int64) (*dto.SpecificationResponse, error)
	ListVariants(ctx context.Context, modelID int64) ([]dto.VariantListItem, error)

	// SaveBase mutates the model's base record (allowed option sets and the
	// reference cutting-part list).
	SaveBase(ctx context.Context, modelID int64, req dto.SaveBaseSpecificationRequest) (*dto.SpecificationResponse, error)
	// DeactivateBase is rejected while the model still has variants.
	DeactivateBase(ctx context.Context, modelID int64) error

	// RecostByMaterial recomputes the persisted total of every active variant
	// referencing the material, using current catalog prices. Called from the
	// async worker after a price change; returns the number of updated rows.
	RecostByMaterial(ctx context.Context, materialID int64) (int, error)
}

type specificationService struct {
	repo    repository.SpecificationRepository
	catalog CatalogService
}

func NewSpecificationService(repo repository.SpecificationRepository, catalog CatalogService) SpecificationService {
	return &specificationService{repo: repo, catalog: catalog}
}

// ── Loading ──────────────────────────────────────────────────────────────────

func (s *specificationService) LoadForVariantCreation(ctx context.Context, modelID int64) (*dto.VariantEditor, error) {
	base, err := s.repo.FindBase(ctx, modelID)
	if err != nil {
		return nil, ErrBaseSpecNotFound
	}

	editor, err := s.editorFromBase(ctx, base)
	if err != nil {
		return nil, err
	}
	editor.CuttingParts = InheritCuttingParts(base.CuttingParts)
	// Lasting type carries over directly - a pure scalar attribute with no
	// inheritance ambiguity.
	editor.LastingTypeID = base.LastingTypeID
	return editor, nil
}

func (s *specificationService) LoadForVariantEdit(ctx context.Context, specID int64) (*dto.VariantEditor, error) {
	variant, err := s.repo.FindByID(ctx, specID)
	if err != nil {
		return nil, ErrSpecNotFound
	}
	base, err := s.repo.FindBase(ctx, variant.ModelID)
	if err != nil {
		return nil, ErrBaseSpecNotFound
	}

	editor, err := s.editorFromBase(ctx, base)
	if err != nil {
		return nil, err
	}

	editor.SpecID = variant.ID
	editor.VariantName = variant.VariantName
	editor.VariantCode = variant.VariantCode
	editor.PerforationID = variant.PerforationID
	editor.LiningID = variant.LiningID
	editor.LastingTypeID = variant.LastingTypeID
	editor.Hardware = variant.Hardware
	editor.Soles = variant.Soles
	editor.TotalMaterialCost = variant.TotalMaterialCost

	if len(variant.CuttingParts) > 0 {
		// The variant already owns its parts - never re-inherit.
		editor.CuttingParts = variantParts(variant.CuttingParts, base.CuttingParts)
	} else {
		editor.CuttingParts = InheritCuttingParts(base.CuttingParts)
	}
	return editor, nil
}

// editorFromBase builds the common part of the editable view-model: the
// allowed-option sets, normalized from the base row's legacy dual
// representation and resolved to names against the active catalog.
func (s *specificationService) editorFromBase(ctx context.Context, base *model.Specification) (*dto.VariantEditor, error) {
	perfIDs := NormalizeOptionIDs(base.PerforationID, base.PerforationIDs)
	liningIDs := NormalizeOptionIDs(base.LiningID, base.LiningIDs)

	allowedPerf, err := s.catalog.ResolveNames(ctx, model.KindPerforation, perfIDs)
	if err != nil {
		return nil, err
	}
	allowedLining, err := s.catalog.ResolveNames(ctx, model.KindLining, liningIDs)
	if err != nil {
		return nil, err
	}

	return &dto.VariantEditor{
		State:               string(DraftEditable),
		ModelID:             base.ModelID,
		BaseSpecID:          base.ID,
		AllowedPerforations: allowedPerf,
		AllowedLinings:      allowedLining,
		CuttingParts:        []dto.VariantCuttingPart{},
		Hardware:            []model.HardwareEntry{},
		Soles:               []model.SoleEntry{},
	}, nil
}

// variantParts maps persisted variant entries back to editable rows, locking
// the names that came from the base list.
func variantParts(parts model.CuttingPartList, baseParts model.CuttingPartList) []dto.VariantCuttingPart {
	baseNames := make(map[string]bool, len(baseParts))
	for _, p := range baseParts {
		baseNames[p.Name] = true
	}
	out := make([]dto.VariantCuttingPart, len(parts))
	for i, p := range parts {
		out[i] = dto.VariantCuttingPart{
			Name:        p.Name,
			Quantity:    p.Quantity,
			Consumption: p.Consumption,
			MaterialID:  p.MaterialID,
			Material:    p.Material,
			Notes:       p.Notes,
			Locked:      baseNames[p.Name],
		}
	}
	return out
}

// ── Saving ───────────────────────────────────────────────────────────────────

func (s *specificationService) SaveVariant(ctx context.Context, req dto.SaveVariantRequest) (*dto.SpecificationResponse, error) {
	base, err := s.repo.FindBase(ctx, req.ModelID)
	if err != nil {
		return nil, ErrBaseSpecNotFound
	}

	// Editable → Validated
	if err := s.validateVariant(req, base); err != nil {
		return nil, err
	}

	variantCode := req.VariantCode
	if variantCode == "" {
		n, err := s.repo.CountVariants(ctx, req.ModelID)
		if err != nil {
			return nil, &PersistenceError{Op: "count variants", Err: err}
		}
		variantCode = fmt.Sprintf("VAR-%d-%d", req.ModelID, n+1)
	}

	// Resolve material prices and names once, outside the transaction.
	materialIDs := collectMaterialIDs(req.CuttingParts)
	prices, err := s.catalog.MaterialPrices(ctx, materialIDs)
	if err != nil {
		return nil, &PersistenceError{Op: "resolve material prices", Err: err}
	}
	names, err := s.catalog.ResolveNames(ctx, model.KindMaterial, materialIDs)
	if err != nil {
		return nil, &PersistenceError{Op: "resolve material names", Err: err}
	}
	nameByID := make(map[int64]string, len(names))
	for _, n := range names {
		nameByID[n.ID] = n.Name
	}

	parts := make(model.CuttingPartList, len(req.CuttingParts))
	inputs := make([]CostInput, len(req.CuttingParts))
	for i, p := range req.CuttingParts {
		material := p.Material
		if p.MaterialID != nil {
			if name, ok := nameByID[*p.MaterialID]; ok {
				material = &name
			}
		}
		parts[i] = model.CuttingPartEntry{
			Name:        p.Name,
			Quantity:    p.Quantity,
			Consumption: p.Consumption,
			Material:    material,
			MaterialID:  p.MaterialID,
			Notes:       p.Notes,
		}
		unitPrice := decimal.Zero
		if p.MaterialID != nil {
			unitPrice = prices[*p.MaterialID]
		}
		inputs[i] = CostInput{
			MaterialID:  p.MaterialID,
			Consumption: decimal.NewFromFloat(p.Consumption),
			UnitPrice:   unitPrice,
		}
	}

	perMaterial, grandTotal := AggregateCosts(inputs)

	// Build or refresh the row
	var spec *model.Specification
	if req.SpecID > 0 {
		existing, err := s.repo.FindByID(ctx, req.SpecID)
		if err != nil {
			return nil, ErrSpecNotFound
		}
		if existing.IsDefault {
			return nil, &ValidationError{Fields: map[string]string{
				"spec_id": "cannot overwrite a base specification through the variant editor",
			}}
		}
		// The membership checks above ran against req.ModelID's base, so the
		// row must actually belong to that model.
		if existing.ModelID != req.ModelID {
			return nil, &ValidationError{Fields: map[string]string{
				"model_id": "does not match the variant's model",
			}}
		}
		spec = existing
	} else {
		spec = &model.Specification{
			ModelID:   req.ModelID,
			Version:   1,
			IsDefault: false,
			IsActive:  true,
		}
	}

	spec.VariantName = req.VariantName
	spec.VariantCode = variantCode
	spec.PerforationID = req.PerforationID
	spec.LiningID = req.LiningID
	spec.LastingTypeID = req.LastingTypeID
	spec.CuttingParts = parts
	spec.Hardware = req.Hardware
	spec.Soles = req.Soles
	// Recomputed immediately before the write so the persisted total is
	// always consistent with the persisted parts.
	spec.TotalMaterialCost = grandTotal

	// Validated → Persisted: single transaction, no partial writes.
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if spec.ID == 0 {
			return s.repo.CreateTx(tx, spec)
		}
		return s.repo.SaveTx(tx, spec)
	})
	if txErr != nil {
		return nil, &PersistenceError{Op: "save variant", Err: txErr}
	}

	resp := specToResponse(spec)
	resp.MaterialTotals = materialTotalsResponse(perMaterial)
	return resp, nil
}

func (s *specificationService) AppendPart(ctx context.Context, templateID int64, parts []dto.VariantCuttingPart) ([]dto.VariantCuttingPart, error) {
	templates, err := s.catalog.ListActive(ctx, model.KindCuttingPart)
	if err != nil {
		return nil, &PersistenceError{Op: "load cutting part templates", Err: err}
	}
	for _, tpl := range templates {
		if tpl.ID == templateID {
			return AppendTemplatePart(parts, tpl)
		}
	}
	return nil, &ValidationError{Fields: map[string]string{
		"template_id": "unknown cutting part template",
	}}
}

// validateVariant performs the Editable → Validated checks:
//   - variant_name is required;
//   - every cutting-part row needs quantity > 0 (consumption may be zero -
//     warned, not blocked);
//   - when the base declares a non-empty allowed set, the chosen
//     perforation/lining must belong to it. An empty set means free choice
//     from the full active catalog.
func (s *specificationService) validateVariant(req dto.SaveVariantRequest, base *model.Specification) error {
	fields := map[string]string{}

	if req.VariantName == "" {
		fields["variant_name"] = "variant name is required"
	}

	seen := make(map[string]bool, len(req.CuttingParts))
	for i, p := range req.CuttingParts {
		if p.Name == "" {
			fields[fmt.Sprintf("cutting_parts[%d].name", i)] = "name is required"
		}
		if seen[p.Name] {
			fields[fmt.Sprintf("cutting_parts[%d].name", i)] = fmt.Sprintf("duplicate part %q", p.Name)
		}
		seen[p.Name] = true
		if p.Quantity <= 0 {
			fields[fmt.Sprintf("cutting_parts[%d].quantity", i)] = "quantity must be positive"
		}
		if p.Consumption == 0 {
			log.Warn().Str("part", p.Name).Msg("cutting part has zero consumption")
		}
	}

	allowedPerf := NormalizeOptionIDs(base.PerforationID, base.PerforationIDs)
	if len(allowedPerf) > 0 && req.PerforationID != nil && !model.OptionIDs(allowedPerf).Contains(*req.PerforationID) {
		fields["perforation_id"] = "not in the base specification's allowed set"
	}
	allowedLining := NormalizeOptionIDs(base.LiningID, base.LiningIDs)
	if len(allowedLining) > 0 && req.LiningID != nil && !model.OptionIDs(allowedLining).Contains(*req.LiningID) {
		fields["lining_id"] = "not in the base specification's allowed set"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func collectMaterialIDs(parts []dto.VariantCuttingPart) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, p := range parts {
		if p.MaterialID != nil && !seen[*p.MaterialID] {
			seen[*p.MaterialID] = true
			ids = append(ids, *p.MaterialID)
		}
	}
	return ids
}

// ── Recosting ────────────────────────────────────────────────────────────────

func (s *specificationService) RecostByMaterial(ctx context.Context, materialID int64) (int, error) {
	variants, err := s.repo.ListVariantsByMaterial(ctx, materialID)
	if err != nil {
		return 0, &PersistenceError{Op: "list variants by material", Err: err}
	}
	if len(variants) == 0 {
		return 0, nil
	}

	// One price lookup for the union of materials across all affected rows.
	idSet := make(map[int64]bool)
	var ids []int64
	for _, v := range variants {
		for _, p := range v.CuttingParts {
			if p.MaterialID != nil && !idSet[*p.MaterialID] {
				idSet[*p.MaterialID] = true
				ids = append(ids, *p.MaterialID)
			}
		}
	}
	prices, err := s.catalog.MaterialPrices(ctx, ids)
	if err != nil {
		return 0, &PersistenceError{Op: "resolve material prices", Err: err}
	}

	updated := 0
	for i := range variants {
		v := &variants[i]
		inputs := make([]CostInput, len(v.CuttingParts))
		for j, p := range v.CuttingParts {
			unitPrice := decimal.Zero
			if p.MaterialID != nil {
				unitPrice = prices[*p.MaterialID]
			}
			inputs[j] = CostInput{
				MaterialID:  p.MaterialID,
				Consumption: decimal.NewFromFloat(p.Consumption),
				UnitPrice:   unitPrice,
			}
		}
		_, total := AggregateCosts(inputs)
		if total.Equal(v.TotalMaterialCost) {
			continue
		}
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.UpdateTotalCostTx(tx, v.ID, total)
		})
		if txErr != nil {
			log.Error().Err(txErr).Int64("spec_id", v.ID).Msg("recost: failed to update variant total")
			continue
		}
		updated++
	}
	return updated, nil
}

// ── Base specification ───────────────────────────────────────────────────────

func (s *specificationService) SaveBase(ctx context.Context, modelID int64, req dto.SaveBaseSpecificationRequest) (*dto.SpecificationResponse, error) {
	base, err := s.repo.FindBase(ctx, modelID)
	if err != nil {
		return nil, ErrBaseSpecNotFound
	}

	// The canonical list form is the only representation written back; the
	// legacy scalar columns stay untouched on rows that still carry them.
	base.PerforationIDs = model.OptionIDs(req.PerforationIDs)
	base.LiningIDs = model.OptionIDs(req.LiningIDs)
	base.LastingTypeID = req.LastingTypeID
	base.CuttingParts = req.CuttingParts
	base.Hardware = req.Hardware
	base.Soles = req.Soles

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.SaveTx(tx, base)
	})
	if txErr != nil {
		return nil, &PersistenceError{Op: "save base specification", Err: txErr}
	}
	return specToResponse(base), nil
}

func (s *specificationService) DeactivateBase(ctx context.Context, modelID int64) error {
	n, err := s.repo.CountVariants(ctx, modelID)
	if err != nil {
		return &PersistenceError{Op: "count variants", Err: err}
	}
	if n > 0 {
		return ErrVariantsExist
	}
	base, err := s.repo.FindBase(ctx, modelID)
	if err != nil {
		return ErrBaseSpecNotFound
	}
	base.IsActive = false
	return s.repo.Update(ctx, base)
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *specificationService) GetSpecification(ctx context.Context, id int64) (*dto.SpecificationResponse, error) {
	spec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSpecNotFound
	}
	return specToResponse(spec), nil
}

func (s *specificationService) ListVariants(ctx context.Context, modelID int64) ([]dto.VariantListItem, error) {
	specs, err := s.repo.ListVariants(ctx, modelID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VariantListItem, len(specs))
	for i, v := range specs {
		items[i] = dto.VariantListItem{
			ID:                v.ID,
			VariantName:       v.VariantName,
			VariantCode:       v.VariantCode,
			TotalMaterialCost: v.TotalMaterialCost,
			CuttingPartCount:  len(v.CuttingParts),
			CreatedAt:         v.CreatedAt.Format(time.RFC3339),
		}
	}
	return items, nil
}

func specToResponse(spec *model.Specification) *dto.SpecificationResponse {
	resp := &dto.SpecificationResponse{
		ID:                spec.ID,
		ModelID:           spec.ModelID,
		IsDefault:         spec.IsDefault,
		VariantName:       spec.VariantName,
		VariantCode:       spec.VariantCode,
		PerforationID:     spec.PerforationID,
		LiningID:          spec.LiningID,
		LastingTypeID:     spec.LastingTypeID,
		CuttingParts:      spec.CuttingParts,
		Hardware:          spec.Hardware,
		Soles:             spec.Soles,
		TotalMaterialCost: spec.TotalMaterialCost,
	}
	if spec.IsDefault {
		// Base rows expose their allowed sets in canonical list form,
		// whichever legacy representation the row carries.
		resp.PerforationIDs = NormalizeOptionIDs(spec.PerforationID, spec.PerforationIDs)
		resp.LiningIDs = NormalizeOptionIDs(spec.LiningID, spec.LiningIDs)
		// The scalar columns are a legacy artifact on base rows.
		resp.PerforationID = nil
		resp.LiningID = nil
	}
	if resp.CuttingParts == nil {
		resp.CuttingParts = model.CuttingPartList{}
	}
	if resp.Hardware == nil {
		resp.Hardware = model.HardwareList{}
	}
	if resp.Soles == nil {
		resp.Soles = model.SoleList{}
	}
	return resp
}

func materialTotalsResponse(perMaterial map[int64]MaterialTotal) []dto.MaterialTotalResponse {
	ids := make([]int64, 0, len(perMaterial))
	for id := range perMaterial {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]dto.MaterialTotalResponse, len(ids))
	for i, id := range ids {
		t := perMaterial[id]
		out[i] = dto.MaterialTotalResponse{
			MaterialID:  id,
			Consumption: t.Consumption,
			Cost:        t.Cost,
		}
	}
	return out
}

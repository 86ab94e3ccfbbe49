package dto

import (
	"kraisys/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Editor view-model ───────────────────────────────────────────────────────

// CatalogOption is one (id, name) pair resolved from a reference table.
type CatalogOption struct {
	ID   int64  `json:"id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name"`
}

// VariantCuttingPart is one editable row of the variant's cutting-part table.
// Locked rows were inherited from the base specification: their name is fixed
// identity, while quantity/consumption/notes stay editable.
type VariantCuttingPart struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Consumption float64 `json:"consumption"`
	MaterialID  *int64  `json:"material_id"`
	Material    *string `json:"material"`
	Notes       string  `json:"notes"`
	Locked      bool    `json:"locked"`
}

// VariantEditor is the prefilled editable state handed to the presentation
// layer when a variant is created or reopened. The client edits it and posts
// the result back as a SaveVariantRequest.
type VariantEditor struct {
	State      string `json:"state"`
	ModelID    int64  `json:"model_id"`
	BaseSpecID int64  `json:"base_spec_id"`
	// SpecID is zero when creating, the variant's row id when editing.
	SpecID int64 `json:"spec_id,omitempty"`

	VariantName string `json:"variant_name"`
	VariantCode string `json:"variant_code"`

	// Allowed option sets resolved from the base specification. The variant's
	// own choice must come from these when the set is non-empty.
	AllowedPerforations []CatalogOption `json:"allowed_perforations"`
	AllowedLinings      []CatalogOption `json:"allowed_linings"`

	PerforationID *int64 `json:"perforation_id"`
	LiningID      *int64 `json:"lining_id"`
	LastingTypeID *int64 `json:"lasting_type_id"`

	CuttingParts []VariantCuttingPart `json:"cutting_parts"`
	Hardware     []model.HardwareEntry `json:"hardware"`
	Soles        []model.SoleEntry     `json:"soles"`

	TotalMaterialCost decimal.Decimal `json:"total_material_cost"`
}

// ─── Requests ────────────────────────────────────────────────────────────────

type SaveVariantRequest struct {
	ModelID int64 `json:"model_id" validate:"required,gt=0"`
	// SpecID > 0 updates an existing variant; zero creates a new one.
	SpecID int64 `json:"spec_id"`

	VariantName string `json:"variant_name" validate:"required,min=1,max=120"`
	VariantCode string `json:"variant_code" validate:"max=60"`

	PerforationID *int64 `json:"perforation_id"`
	LiningID      *int64 `json:"lining_id"`
	LastingTypeID *int64 `json:"lasting_type_id"`

	CuttingParts []VariantCuttingPart  `json:"cutting_parts"`
	Hardware     []model.HardwareEntry `json:"hardware"`
	Soles        []model.SoleEntry     `json:"soles"`
}

// AppendPartRequest adds a row from the cutting-part template catalog to the
// editor's current part list. The server resolves the template so the
// duplicate-name guard and the default quantity live in one place.
type AppendPartRequest struct {
	TemplateID   int64                `json:"template_id" validate:"required,gt=0"`
	CuttingParts []VariantCuttingPart `json:"cutting_parts"`
}

// SaveBaseSpecificationRequest updates the base (is_default) record of a
// model: the allowed option sets and the reference cutting-part list.
type SaveBaseSpecificationRequest struct {
	PerforationIDs []int64 `json:"perforation_ids"`
	LiningIDs      []int64 `json:"lining_ids"`
	LastingTypeID  *int64  `json:"lasting_type_id"`

	CuttingParts []model.CuttingPartEntry `json:"cutting_parts"`
	Hardware     []model.HardwareEntry    `json:"hardware"`
	Soles        []model.SoleEntry        `json:"soles"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type MaterialTotalResponse struct {
	MaterialID  int64           `json:"material_id"`
	Consumption decimal.Decimal `json:"consumption"`
	Cost        decimal.Decimal `json:"cost"`
}

type SpecificationResponse struct {
	ID          int64  `json:"id"`
	ModelID     int64  `json:"model_id"`
	IsDefault   bool   `json:"is_default"`
	VariantName string `json:"variant_name,omitempty"`
	VariantCode string `json:"variant_code,omitempty"`

	PerforationID  *int64  `json:"perforation_id"`
	LiningID       *int64  `json:"lining_id"`
	LastingTypeID  *int64  `json:"lasting_type_id"`
	PerforationIDs []int64 `json:"perforation_ids,omitempty"`
	LiningIDs      []int64 `json:"lining_ids,omitempty"`

	CuttingParts []model.CuttingPartEntry `json:"cutting_parts"`
	Hardware     []model.HardwareEntry    `json:"hardware"`
	Soles        []model.SoleEntry        `json:"soles"`

	TotalMaterialCost decimal.Decimal         `json:"total_material_cost"`
	MaterialTotals    []MaterialTotalResponse `json:"material_totals,omitempty"`
}

type VariantListItem struct {
	ID                int64           `json:"id"`
	VariantName       string          `json:"variant_name"`
	VariantCode       string          `json:"variant_code"`
	TotalMaterialCost decimal.Decimal `json:"total_material_cost"`
	CuttingPartCount  int             `json:"cutting_part_count"`
	CreatedAt         string          `json:"created_at"`
}

package dto

import "github.com/shopspring/decimal"

// CatalogRecordResponse is the full reference-table row shape returned by the
// catalog maintenance endpoints (CatalogOption is the slim id/name pair the
// editor view-model uses).
type CatalogRecordResponse struct {
	ID         int64            `json:"id"`
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	Category   string           `json:"category,omitempty"`
	Unit       string           `json:"unit,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	DefaultQty *int             `json:"default_qty,omitempty"`
	IsActive   bool             `json:"is_active"`
}

type CreateCatalogRecordRequest struct {
	Code       string           `json:"code"     validate:"required,min=1,max=60"`
	Name       string           `json:"name"     validate:"required,min=1,max=120"`
	Category   string           `json:"category" validate:"max=40"`
	Unit       string           `json:"unit"     validate:"max=20"`
	Price      *decimal.Decimal `json:"price"`
	GroupType  string           `json:"group_type" validate:"max=20"` // materials only
	DefaultQty *int             `json:"default_qty"`                  // cutting-part templates only
}

type UpdateCatalogRecordRequest struct {
	Name       *string          `json:"name"     validate:"omitempty,min=1,max=120"`
	Category   *string          `json:"category" validate:"omitempty,max=40"`
	Unit       *string          `json:"unit"     validate:"omitempty,max=20"`
	Price      *decimal.Decimal `json:"price"`
	DefaultQty *int             `json:"default_qty"`
	IsActive   *bool            `json:"is_active"`
}

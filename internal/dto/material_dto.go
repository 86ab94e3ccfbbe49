package dto

import "github.com/shopspring/decimal"

type UpdateMaterialPriceRequest struct {
	Price  decimal.Decimal `json:"price"  validate:"required"`
	Reason string          `json:"reason" validate:"omitempty,oneof=manual import revaluation"`
}

type PriceHistoryItem struct {
	ID        int64           `json:"id"`
	PriceOld  decimal.Decimal `json:"price_old"`
	PriceNew  decimal.Decimal `json:"price_new"`
	Reason    string          `json:"reason"`
	ChangedBy string          `json:"changed_by"`
	CreatedAt string          `json:"created_at"`
}

type PriceHistoryResponse struct {
	Data  []PriceHistoryItem `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateModelRequest struct {
	Article  string `json:"article"   validate:"required,min=2,max=40"`
	Name     string `json:"name"      validate:"required,min=2,max=120"`
	LastCode string `json:"last_code" validate:"max=40"`
	LastType string `json:"last_type" validate:"max=40"`
	SizeMin  int    `json:"size_min"  validate:"min=0,max=60"`
	SizeMax  int    `json:"size_max"  validate:"min=0,max=60"`
}

type UpdateModelRequest struct {
	Name     *string `json:"name"      validate:"omitempty,min=2,max=120"`
	LastCode *string `json:"last_code" validate:"omitempty,max=40"`
	LastType *string `json:"last_type" validate:"omitempty,max=40"`
	SizeMin  *int    `json:"size_min"  validate:"omitempty,min=0,max=60"`
	SizeMax  *int    `json:"size_max"  validate:"omitempty,min=0,max=60"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ModelFilter struct {
	Article string `form:"article"`
	Name    string `form:"name"`
	Active  string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ModelResponse struct {
	ID         int64  `json:"id"`
	Article    string `json:"article"`
	Name       string `json:"name"`
	LastCode   string `json:"last_code"`
	LastType   string `json:"last_type"`
	SizeMin    int    `json:"size_min"`
	SizeMax    int    `json:"size_max"`
	IsActive   bool   `json:"is_active"`
	BaseSpecID int64  `json:"base_spec_id,omitempty"`
}

type ModelListResponse struct {
	Data  []ModelResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialPriceHistory records every material price change. Rows are
// immutable - never updated or deleted.
type MaterialPriceHistory struct {
	ID         int64           `gorm:"primaryKey"`
	MaterialID int64           `gorm:"not null;index"`
	PriceOld   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PriceNew   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason     string          `gorm:"not null;default:'manual'"` // manual | import | revaluation
	ChangedBy  string
	CreatedAt  time.Time

	Material Material `gorm:"foreignKey:MaterialID"`
}

func (MaterialPriceHistory) TableName() string { return "material_price_history" }

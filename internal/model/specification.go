package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Specification is one bill-of-material row. A base record (IsDefault=true,
// empty VariantName) enumerates the allowed option sets for its model; a
// variant record (IsDefault=false) resolves each attribute to exactly one
// concrete choice and carries its own aggregated material cost.
//
// Legacy scalar/array duality: PerforationID/LiningID are the old single-id
// columns, PerforationIDs/LiningIDs the newer JSON-array columns. Both can
// appear on real rows - service.NormalizeOptionIDs reconciles them at the
// persistence boundary; in-memory code only ever sees the list form.
type Specification struct {
	ID      int64     `gorm:"primaryKey"`
	UUID    uuid.UUID `gorm:"type:uuid;uniqueIndex;default:gen_random_uuid()"`
	ModelID int64     `gorm:"not null;index"`

	Version   int  `gorm:"not null;default:1"`
	IsDefault bool `gorm:"not null;default:false;index"`
	IsActive  bool `gorm:"not null;default:true"`

	VariantName string
	VariantCode string

	// Variant choices (scalar, meaningful when IsDefault=false)
	PerforationID *int64
	LiningID      *int64
	// LastingTypeID is scalar on both base and variant rows.
	LastingTypeID *int64

	// Base allowed-option sets (meaningful when IsDefault=true)
	PerforationIDs OptionIDs `gorm:"type:jsonb"`
	LiningIDs      OptionIDs `gorm:"type:jsonb"`

	CuttingParts CuttingPartList `gorm:"type:jsonb"`
	Hardware     HardwareList    `gorm:"type:jsonb"`
	Soles        SoleList        `gorm:"type:jsonb"`

	// TotalMaterialCost is recomputed from CuttingParts inside every save
	// transaction - never lazily on read.
	TotalMaterialCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Specification) TableName() string { return "specifications" }

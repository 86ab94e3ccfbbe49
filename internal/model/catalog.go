package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogKind selects one of the reference tables the resolution engine
// reads. The engine never mutates catalog rows itself - only the catalog
// maintenance endpoints do.
type CatalogKind string

const (
	KindPerforation CatalogKind = "perforation"
	KindLining      CatalogKind = "lining"
	KindLasting     CatalogKind = "lasting"
	KindCuttingPart CatalogKind = "cutting_part"
	KindMaterial    CatalogKind = "material"
)

// Material groups (materials.group_type)
const (
	MaterialGroupLeather   = "LEATHER"
	MaterialGroupSole      = "SOLE"
	MaterialGroupHardware  = "HARDWARE"
	MaterialGroupLining    = "LINING"
	MaterialGroupChemical  = "CHEMICAL"
	MaterialGroupPackaging = "PACKAGING"
)

type PerforationType struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"index;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PerforationType) TableName() string { return "perforation_types" }

type LiningType struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"index;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LiningType) TableName() string { return "lining_types" }

// LastingType is the lasting method (cemented, hand-lasted, ...).
type LastingType struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"index;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LastingType) TableName() string { return "lasting_types" }

// CuttingPartTemplate is the reference row a technologist picks from when
// appending parts beyond the inherited base list.
type CuttingPartTemplate struct {
	ID         int64  `gorm:"primaryKey"`
	Code       string `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"index;not null"`
	Category   string // VAMP, QUARTER, COUNTER, ...
	DefaultQty *int
	Unit       string `gorm:"not null;default:'pcs'"`
	Notes      string
	IsActive   bool `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CuttingPartTemplate) TableName() string { return "cutting_parts" }

type Material struct {
	ID        int64  `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"index;not null"`
	GroupType string `gorm:"not null;index"`
	Unit      string `gorm:"not null;default:'pcs'"`
	// Price per unit. NULL means the material is not yet priced - it still
	// participates in consumption totals, just with zero cost.
	Price        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	SupplierName string
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Material) TableName() string { return "materials" }

// CatalogRecord is the kind-independent projection the resolution engine
// consumes: every reference table maps into it.
type CatalogRecord struct {
	ID         int64            `json:"id"`
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	Category   string           `json:"category,omitempty"`
	Unit       string           `json:"unit,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	DefaultQty *int             `json:"default_qty,omitempty"`
}

package model

import "time"

// Model is a shoe product family. It owns exactly one base specification
// (specifications.is_default=true) and zero or more variants.
type Model struct {
	ID      int64  `gorm:"primaryKey"`
	Article string `gorm:"uniqueIndex;not null"`
	Name    string `gorm:"index;not null"`

	// Last (shoe form) the model is built on
	LastCode string
	LastType string // boot, pump, derby, ...

	SizeMin int `gorm:"not null;default:36"`
	SizeMax int `gorm:"not null;default:46"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Model) TableName() string { return "models" }

package repository

import (
	"context"
	"fmt"

	"kraisys/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SpecificationRepository is the data access contract for specification rows.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type SpecificationRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Specification, error)
	// FindBase returns the model's is_default=true row.
	FindBase(ctx context.Context, modelID int64) (*model.Specification, error)
	ListVariants(ctx context.Context, modelID int64) ([]model.Specification, error)
	CountVariants(ctx context.Context, modelID int64) (int64, error)
	// ListVariantsByMaterial finds active variant rows whose cutting_parts
	// reference the material (jsonb containment).
	ListVariantsByMaterial(ctx context.Context, materialID int64) ([]model.Specification, error)

	Create(ctx context.Context, s *model.Specification) error
	Update(ctx context.Context, s *model.Specification) error

	// Used inside transactions - callers must pass the tx instance
	CreateTx(tx *gorm.DB, s *model.Specification) error
	SaveTx(tx *gorm.DB, s *model.Specification) error
	UpdateTotalCostTx(tx *gorm.DB, id int64, total decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type specificationRepo struct{ db *gorm.DB }

func NewSpecificationRepository(db *gorm.DB) SpecificationRepository {
	return &specificationRepo{db: db}
}

func (r *specificationRepo) FindByID(ctx context.Context, id int64) (*model.Specification, error) {
	var s model.Specification
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *specificationRepo) FindBase(ctx context.Context, modelID int64) (*model.Specification, error) {
	var s model.Specification
	err := r.db.WithContext(ctx).
		Where("model_id = ? AND is_default = true AND is_active = true", modelID).
		First(&s).Error
	return &s, err
}

func (r *specificationRepo) ListVariants(ctx context.Context, modelID int64) ([]model.Specification, error) {
	var specs []model.Specification
	err := r.db.WithContext(ctx).
		Where("model_id = ? AND is_default = false AND is_active = true", modelID).
		Order("created_at ASC").
		Find(&specs).Error
	return specs, err
}

func (r *specificationRepo) CountVariants(ctx context.Context, modelID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Specification{}).
		Where("model_id = ? AND is_default = false", modelID).
		Count(&n).Error
	return n, err
}

func (r *specificationRepo) ListVariantsByMaterial(ctx context.Context, materialID int64) ([]model.Specification, error) {
	var specs []model.Specification
	needle := fmt.Sprintf(`[{"material_id": %d}]`, materialID)
	err := r.db.WithContext(ctx).
		Where("is_default = false AND is_active = true").
		Where("cutting_parts @> ?::jsonb", needle).
		Find(&specs).Error
	return specs, err
}

func (r *specificationRepo) Create(ctx context.Context, s *model.Specification) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *specificationRepo) Update(ctx context.Context, s *model.Specification) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *specificationRepo) CreateTx(tx *gorm.DB, s *model.Specification) error {
	return tx.Create(s).Error
}

func (r *specificationRepo) SaveTx(tx *gorm.DB, s *model.Specification) error {
	return tx.Save(s).Error
}

func (r *specificationRepo) UpdateTotalCostTx(tx *gorm.DB, id int64, total decimal.Decimal) error {
	return tx.Model(&model.Specification{}).Where("id = ?", id).
		Update("total_material_cost", total).Error
}

func (r *specificationRepo) DB() *gorm.DB { return r.db }

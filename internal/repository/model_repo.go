package repository

import (
	"context"

	"kraisys/internal/dto"
	"kraisys/internal/model"

	"gorm.io/gorm"
)

type ModelRepository interface {
	Create(ctx context.Context, m *model.Model) error
	CreateTx(tx *gorm.DB, m *model.Model) error
	FindByID(ctx context.Context, id int64) (*model.Model, error)
	FindByArticle(ctx context.Context, article string) (*model.Model, error)
	List(ctx context.Context, filter dto.ModelFilter) ([]model.Model, int64, error)
	Update(ctx context.Context, m *model.Model) error
	SoftDelete(ctx context.Context, id int64) error

	DB() *gorm.DB
}

type modelRepo struct{ db *gorm.DB }

func NewModelRepository(db *gorm.DB) ModelRepository { return &modelRepo{db: db} }

func (r *modelRepo) Create(ctx context.Context, m *model.Model) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *modelRepo) CreateTx(tx *gorm.DB, m *model.Model) error {
	return tx.Create(m).Error
}

func (r *modelRepo) FindByID(ctx context.Context, id int64) (*model.Model, error) {
	var m model.Model
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *modelRepo) FindByArticle(ctx context.Context, article string) (*model.Model, error) {
	var m model.Model
	err := r.db.WithContext(ctx).Where("article = ?", article).First(&m).Error
	return &m, err
}

func (r *modelRepo) List(ctx context.Context, filter dto.ModelFilter) ([]model.Model, int64, error) {
	var models []model.Model
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Model{})

	// Active filter: "false" = inactive, "all" = everything, default active
	switch filter.Active {
	case "false":
		q = q.Where("is_active = false")
	case "all":
		// no filter
	default:
		q = q.Where("is_active = true")
	}

	if filter.Article != "" {
		q = q.Where("article = ?", filter.Article)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("article ASC").Limit(filter.Limit).Offset(offset).Find(&models).Error
	return models, total, err
}

func (r *modelRepo) Update(ctx context.Context, m *model.Model) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *modelRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Model{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *modelRepo) DB() *gorm.DB { return r.db }

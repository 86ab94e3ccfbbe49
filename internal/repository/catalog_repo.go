package repository

import (
	"context"
	"fmt"

	"kraisys/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogRepository reads the reference tables (perforation / lining / lasting
// types, cutting-part templates, materials) and handles their maintenance
// writes. The resolution engine only ever uses the read side.
type CatalogRepository interface {
	ListActive(ctx context.Context, kind model.CatalogKind) ([]model.CatalogRecord, error)
	FindByIDs(ctx context.Context, kind model.CatalogKind, ids []int64) ([]model.CatalogRecord, error)
	// ListMaterialsByGroup returns active materials restricted to the given
	// group_type values (e.g. LEATHER + LINING for cutting-part choices).
	ListMaterialsByGroup(ctx context.Context, groups ...string) ([]model.CatalogRecord, error)
	// MaterialPrices returns a price per material id; unpriced materials map
	// to decimal zero. Unknown ids are absent from the result.
	MaterialPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)

	Create(ctx context.Context, kind model.CatalogKind, rec *model.CatalogRecord, groupType string) error
	Update(ctx context.Context, kind model.CatalogKind, id int64, fields map[string]interface{}) error
	// UpdatePriceTx writes a material price inside the caller's transaction.
	UpdatePriceTx(tx *gorm.DB, materialID int64, price decimal.Decimal) error

	DB() *gorm.DB
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) ListActive(ctx context.Context, kind model.CatalogKind) ([]model.CatalogRecord, error) {
	return r.query(ctx, kind, func(q *gorm.DB) *gorm.DB {
		return q.Where("is_active = true").Order("name ASC")
	})
}

func (r *catalogRepo) FindByIDs(ctx context.Context, kind model.CatalogKind, ids []int64) ([]model.CatalogRecord, error) {
	if len(ids) == 0 {
		return []model.CatalogRecord{}, nil
	}
	return r.query(ctx, kind, func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ? AND is_active = true", ids)
	})
}

// query runs scope against the kind's table and maps rows into CatalogRecord.
func (r *catalogRepo) query(ctx context.Context, kind model.CatalogKind, scope func(*gorm.DB) *gorm.DB) ([]model.CatalogRecord, error) {
	db := scope(r.db.WithContext(ctx))
	switch kind {
	case model.KindPerforation:
		var rows []model.PerforationType
		if err := db.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]model.CatalogRecord, len(rows))
		for i, t := range rows {
			out[i] = model.CatalogRecord{ID: t.ID, Code: t.Code, Name: t.Name}
		}
		return out, nil
	case model.KindLining:
		var rows []model.LiningType
		if err := db.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]model.CatalogRecord, len(rows))
		for i, t := range rows {
			out[i] = model.CatalogRecord{ID: t.ID, Code: t.Code, Name: t.Name}
		}
		return out, nil
	case model.KindLasting:
		var rows []model.LastingType
		if err := db.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]model.CatalogRecord, len(rows))
		for i, t := range rows {
			out[i] = model.CatalogRecord{ID: t.ID, Code: t.Code, Name: t.Name}
		}
		return out, nil
	case model.KindCuttingPart:
		var rows []model.CuttingPartTemplate
		if err := db.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]model.CatalogRecord, len(rows))
		for i, t := range rows {
			out[i] = model.CatalogRecord{
				ID: t.ID, Code: t.Code, Name: t.Name,
				Category: t.Category, Unit: t.Unit, DefaultQty: t.DefaultQty,
			}
		}
		return out, nil
	case model.KindMaterial:
		var rows []model.Material
		if err := db.Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]model.CatalogRecord, len(rows))
		for i, m := range rows {
			out[i] = model.CatalogRecord{
				ID: m.ID, Code: m.Code, Name: m.Name,
				Category: m.GroupType, Unit: m.Unit, Price: m.Price,
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown catalog kind %q", kind)
	}
}

func (r *catalogRepo) ListMaterialsByGroup(ctx context.Context, groups ...string) ([]model.CatalogRecord, error) {
	var rows []model.Material
	err := r.db.WithContext(ctx).
		Where("is_active = true AND group_type IN ?", groups).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.CatalogRecord, len(rows))
	for i, m := range rows {
		out[i] = model.CatalogRecord{
			ID: m.ID, Code: m.Code, Name: m.Name,
			Category: m.GroupType, Unit: m.Unit, Price: m.Price,
		}
	}
	return out, nil
}

func (r *catalogRepo) MaterialPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	prices := make(map[int64]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}
	var rows []model.Material
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		if m.Price != nil {
			prices[m.ID] = *m.Price
		} else {
			prices[m.ID] = decimal.Zero
		}
	}
	return prices, nil
}

func (r *catalogRepo) Create(ctx context.Context, kind model.CatalogKind, rec *model.CatalogRecord, groupType string) error {
	db := r.db.WithContext(ctx)
	switch kind {
	case model.KindPerforation:
		row := model.PerforationType{Code: rec.Code, Name: rec.Name, IsActive: true}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
	case model.KindLining:
		row := model.LiningType{Code: rec.Code, Name: rec.Name, IsActive: true}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
	case model.KindLasting:
		row := model.LastingType{Code: rec.Code, Name: rec.Name, IsActive: true}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
	case model.KindCuttingPart:
		row := model.CuttingPartTemplate{
			Code: rec.Code, Name: rec.Name, Category: rec.Category,
			DefaultQty: rec.DefaultQty, Unit: orDefault(rec.Unit, "pcs"), IsActive: true,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
	case model.KindMaterial:
		row := model.Material{
			Code: rec.Code, Name: rec.Name, GroupType: groupType,
			Unit: orDefault(rec.Unit, "pcs"), Price: rec.Price, IsActive: true,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
		rec.ID = row.ID
	default:
		return fmt.Errorf("unknown catalog kind %q", kind)
	}
	return nil
}

func (r *catalogRepo) Update(ctx context.Context, kind model.CatalogKind, id int64, fields map[string]interface{}) error {
	var target interface{}
	switch kind {
	case model.KindPerforation:
		target = &model.PerforationType{}
	case model.KindLining:
		target = &model.LiningType{}
	case model.KindLasting:
		target = &model.LastingType{}
	case model.KindCuttingPart:
		target = &model.CuttingPartTemplate{}
	case model.KindMaterial:
		target = &model.Material{}
	default:
		return fmt.Errorf("unknown catalog kind %q", kind)
	}
	return r.db.WithContext(ctx).Model(target).Where("id = ?", id).Updates(fields).Error
}

func (r *catalogRepo) UpdatePriceTx(tx *gorm.DB, materialID int64, price decimal.Decimal) error {
	return tx.Model(&model.Material{}).Where("id = ?", materialID).
		Update("price", price).Error
}

func (r *catalogRepo) DB() *gorm.DB { return r.db }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package catalog

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogEntity "weftshop.GO/model/entity/catalog"
)

// ErrSkuNotFound is returned when a SKU does not exist.
var ErrSkuNotFound = errors.New("sku not found")

type SkuRepository struct {
	db *gorm.DB
}

func NewSkuRepository(db *gorm.DB) *SkuRepository {
	return &SkuRepository{db: db}
}

// forUpdate adds a row lock where the dialect supports it. SQLite (tests) has
// no FOR UPDATE; its transactions serialize writers at the database level.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *SkuRepository) Create(sku *catalogEntity.Sku) error {
	return r.db.Create(sku).Error
}

func (r *SkuRepository) FindBySKU(sku string) (*catalogEntity.Sku, error) {
	var s catalogEntity.Sku
	err := r.db.Where("sku = ?", sku).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSkuNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkuRepository) FindByID(id uint) (*catalogEntity.Sku, error) {
	var s catalogEntity.Sku
	err := r.db.First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSkuNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByIDForUpdate loads a SKU holding a row lock inside tx. All stock
// mutations go through this to prevent lost updates on available_grams.
func (r *SkuRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*catalogEntity.Sku, error) {
	var s catalogEntity.Sku
	err := forUpdate(tx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSkuNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindBySKUForUpdate loads a SKU by code holding a row lock inside tx.
func (r *SkuRepository) FindBySKUForUpdate(tx *gorm.DB, sku string) (*catalogEntity.Sku, error) {
	var s catalogEntity.Sku
	err := forUpdate(tx).Where("sku = ?", sku).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSkuNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save persists availability/flag changes inside tx.
func (r *SkuRepository) Save(tx *gorm.DB, sku *catalogEntity.Sku) error {
	return tx.Save(sku).Error
}

// List returns SKUs filtered by optional category/tier.
func (r *SkuRepository) List(category, tier string, limit int) ([]catalogEntity.Sku, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.Order("sku_id")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if tier != "" {
		q = q.Where("tier = ?", tier)
	}
	var skus []catalogEntity.Sku
	err := q.Limit(limit).Find(&skus).Error
	return skus, err
}

// ListBulk returns all BULK_G SKUs, used by the availability rebuild.
func (r *SkuRepository) ListBulk() ([]catalogEntity.Sku, error) {
	var skus []catalogEntity.Sku
	err := r.db.Where("sale_mode = ?", catalogEntity.SaleModeBulk).Find(&skus).Error
	return skus, err
}

package pricing

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pricingEntity "weftshop.GO/model/entity/pricing"
)

// ErrEntryNotFound is returned when no matrix entry matches a lookup.
var ErrEntryNotFound = errors.New("price matrix entry not found")

type PriceMatrixRepository struct {
	db *gorm.DB
}

func NewPriceMatrixRepository(db *gorm.DB) *PriceMatrixRepository {
	return &PriceMatrixRepository{db: db}
}

// FindForShade resolves the entry whose shade range covers the given shade for
// an exact (category, tier, length). Narrower ranges win when ranges overlap.
func (r *PriceMatrixRepository) FindForShade(category, tier string, lengthCm, shade uint16) (*pricingEntity.PriceMatrixEntry, error) {
	var e pricingEntity.PriceMatrixEntry
	err := r.db.
		Where("category = ? AND tier = ? AND length_cm = ?", category, tier, lengthCm).
		Where("shade_start <= ? AND shade_end >= ?", shade, shade).
		Order("shade_end - shade_start").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// BulkUpsert inserts or updates entries on the exact tuple. Returns the number
// of rows written.
func (r *PriceMatrixRepository) BulkUpsert(entries []pricingEntity.PriceMatrixEntry, batchSize int) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	upsert := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "category"}, {Name: "tier"},
			{Name: "shade_start"}, {Name: "shade_end"}, {Name: "length_cm"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"price_per_gram", "updated_at"}),
	}
	if err := r.db.Clauses(upsert).CreateInBatches(entries, batchSize).Error; err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Category string
	Tier     string
	Shade    uint16
	LengthCm uint16
}

// List returns matrix entries matching the filter, ordered for admin display.
func (r *PriceMatrixRepository) List(f Filter) ([]pricingEntity.PriceMatrixEntry, error) {
	q := r.db.Order("category, tier, length_cm, shade_start")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Tier != "" {
		q = q.Where("tier = ?", f.Tier)
	}
	if f.LengthCm > 0 {
		q = q.Where("length_cm = ?", f.LengthCm)
	}
	if f.Shade > 0 {
		q = q.Where("shade_start <= ? AND shade_end >= ?", f.Shade, f.Shade)
	}
	var entries []pricingEntity.PriceMatrixEntry
	err := q.Find(&entries).Error
	return entries, err
}

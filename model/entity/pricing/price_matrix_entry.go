package pricing

import "time"

// PriceMatrixEntry represents pricing_matrix_entry: a price-per-gram keyed by
// (category, tier, shade range, length). At most one entry per exact tuple.
type PriceMatrixEntry struct {
	EntryID      uint    `gorm:"column:entry_id;primaryKey;autoIncrement" json:"entry_id,omitempty"`
	Category     string  `gorm:"column:category;type:varchar(64);not null;uniqueIndex:idx_matrix_tuple" json:"category"`
	Tier         string  `gorm:"column:tier;type:varchar(64);not null;uniqueIndex:idx_matrix_tuple" json:"tier"`
	ShadeStart   uint16  `gorm:"column:shade_start;type:smallint unsigned;not null;uniqueIndex:idx_matrix_tuple" json:"shade_start"`
	ShadeEnd     uint16  `gorm:"column:shade_end;type:smallint unsigned;not null;uniqueIndex:idx_matrix_tuple" json:"shade_end"`
	LengthCm     uint16  `gorm:"column:length_cm;type:smallint unsigned;not null;uniqueIndex:idx_matrix_tuple" json:"length_cm"`
	PricePerGram float64 `gorm:"column:price_per_gram;type:decimal(12,4);not null" json:"price_per_gram"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PriceMatrixEntry) TableName() string {
	return "pricing_matrix_entry"
}

// Covers reports whether a shade falls in the entry's [start, end] range.
func (e *PriceMatrixEntry) Covers(shade uint16) bool {
	return shade >= e.ShadeStart && shade <= e.ShadeEnd
}

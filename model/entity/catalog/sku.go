package catalog

import "time"

// SaleMode says how a SKU is sold: as one indivisible weighed piece or from a
// divisible pool of grams.
type SaleMode string

const (
	SaleModePiece SaleMode = "PIECE_BY_WEIGHT"
	SaleModeBulk  SaleMode = "BULK_G"
)

// Valid reports whether the mode is one of the two known modes.
func (m SaleMode) Valid() bool {
	return m == SaleModePiece || m == SaleModeBulk
}

// Sku represents catalog_sku. AvailableGrams and IsInStock are caches derived
// from the stock ledger; only the ledger-writing paths (payment confirmation,
// cancellation sweep, stock-take completion, intake) may write them.
type Sku struct {
	SkuID    uint     `gorm:"column:sku_id;primaryKey;autoIncrement" json:"sku_id,omitempty"`
	SKU      string   `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name     string   `gorm:"column:name;type:varchar(255);not null" json:"name"`
	SaleMode SaleMode `gorm:"column:sale_mode;type:varchar(16);not null" json:"sale_mode"`

	// Classification for price-matrix lookup
	Category string `gorm:"column:category;type:varchar(64);not null;index:idx_sku_class" json:"category"`
	Tier     string `gorm:"column:tier;type:varchar(64);not null;index:idx_sku_class" json:"tier"`
	LengthCm uint16 `gorm:"column:length_cm;type:smallint unsigned;not null" json:"length_cm"`
	Shade    uint16 `gorm:"column:shade;type:smallint unsigned;not null" json:"shade"`

	// Fallback price when no matrix entry matches
	PricePerGram float64 `gorm:"column:price_per_gram;type:decimal(12,4);not null;default:0" json:"price_per_gram"`

	// PIECE_BY_WEIGHT: the piece's full weight. Not meaningful for BULK_G.
	WeightTotalG int  `gorm:"column:weight_total_g;not null;default:0" json:"weight_total_g"`
	SoldOut      bool `gorm:"column:sold_out;not null;default:false" json:"sold_out"`

	// BULK_G: pool of grams plus ordering constraints. Not meaningful for pieces.
	AvailableGrams int `gorm:"column:available_grams;not null;default:0" json:"available_grams"`
	MinOrderGrams  int `gorm:"column:min_order_grams;not null;default:0" json:"min_order_grams"`
	StepGrams      int `gorm:"column:step_grams;not null;default:0" json:"step_grams"`

	IsInStock bool `gorm:"column:is_in_stock;not null;default:true" json:"is_in_stock"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Sku) TableName() string {
	return "catalog_sku"
}

// Sellable reports whether the SKU can currently be quoted at all.
func (s *Sku) Sellable() bool {
	switch s.SaleMode {
	case SaleModePiece:
		return !s.SoldOut
	case SaleModeBulk:
		return s.AvailableGrams > 0
	}
	return false
}

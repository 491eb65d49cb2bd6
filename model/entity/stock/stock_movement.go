package stock

import "time"

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// StockMovement represents stock_movement, the append-only ledger of stock
// changes. Rows are never edited; corrections are new ADJUST rows. The SKU's
// cached availability must stay derivable from the signed sum of its rows.
type StockMovement struct {
	MovementID uint         `gorm:"column:movement_id;primaryKey;autoIncrement" json:"movement_id,omitempty"`
	SkuID      uint         `gorm:"column:sku_id;not null;index" json:"sku_id"`
	Type       MovementType `gorm:"column:type;type:varchar(8);not null" json:"type"`

	// Magnitude in grams. IN/OUT store a positive magnitude whose sign is
	// implied by the type; ADJUST stores the signed correction itself.
	Grams int `gorm:"column:grams;not null" json:"grams"`

	OrderID   *uint  `gorm:"column:order_id;index" json:"order_id,omitempty"`
	Note      string `gorm:"column:note;type:varchar(255)" json:"note,omitempty"`
	SoldPiece bool   `gorm:"column:sold_piece;not null;default:false" json:"sold_piece"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movement"
}

// SignedGrams returns the movement's contribution to availability.
func (m *StockMovement) SignedGrams() int {
	switch m.Type {
	case MovementIn:
		return m.Grams
	case MovementOut:
		return -m.Grams
	}
	return m.Grams
}

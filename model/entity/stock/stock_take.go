package stock

import (
	"time"

	"gorm.io/datatypes"
)

// StockTakeStatus is the lifecycle state of a physical inventory count session.
type StockTakeStatus string

const (
	StockTakePlanned    StockTakeStatus = "PLANNED"
	StockTakeInProgress StockTakeStatus = "IN_PROGRESS"
	StockTakeCompleted  StockTakeStatus = "COMPLETED"
	StockTakeCancelled  StockTakeStatus = "CANCELLED"
)

var stockTakeTransitions = map[StockTakeStatus][]StockTakeStatus{
	StockTakePlanned:    {StockTakeInProgress, StockTakeCancelled},
	StockTakeInProgress: {StockTakeCompleted, StockTakeCancelled},
	// COMPLETED and CANCELLED are terminal
}

// CanTransitionTo reports whether the status machine allows the move.
func (s StockTakeStatus) CanTransitionTo(next StockTakeStatus) bool {
	for _, allowed := range stockTakeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StockTake represents stock_take, a reconciliation session. Completing it is
// the only path that turns item differences into ledger ADJUST rows.
type StockTake struct {
	StockTakeID uint            `gorm:"column:stock_take_id;primaryKey;autoIncrement" json:"stock_take_id,omitempty"`
	Code        string          `gorm:"column:code;type:varchar(64);not null;uniqueIndex" json:"code"`
	Status      StockTakeStatus `gorm:"column:status;type:varchar(16);not null;default:'PLANNED'" json:"status"`
	Note        string          `gorm:"column:note;type:varchar(255)" json:"note,omitempty"`
	Metadata    datatypes.JSON  `gorm:"column:metadata" json:"metadata,omitempty"`

	Items []StockTakeItem `gorm:"foreignKey:StockTakeID" json:"items,omitempty"`

	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (StockTake) TableName() string {
	return "stock_take"
}

// StockTakeItem represents stock_take_item, one counted SKU within a session.
type StockTakeItem struct {
	ItemID        uint   `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id,omitempty"`
	StockTakeID   uint   `gorm:"column:stock_take_id;not null;index" json:"stock_take_id"`
	SkuID         uint   `gorm:"column:sku_id;not null;index" json:"sku_id"`
	Location      string `gorm:"column:location;type:varchar(64)" json:"location,omitempty"`
	ExpectedGrams int    `gorm:"column:expected_grams;not null" json:"expected_grams"`
	CountedGrams  int    `gorm:"column:counted_grams;not null" json:"counted_grams"`
	// counted − expected; applied as a signed ADJUST on completion
	DifferenceGrams int `gorm:"column:difference_grams;not null" json:"difference_grams"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (StockTakeItem) TableName() string {
	return "stock_take_item"
}

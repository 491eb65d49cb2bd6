package sales

import "time"

// AssemblyType says how a finishing surcharge is charged.
type AssemblyType string

const (
	AssemblyFlat    AssemblyType = "FLAT"
	AssemblyPerGram AssemblyType = "PER_GRAM"
)

// OrderItem represents sales_order_item. It is a price/quantity snapshot taken
// at order time and is immutable afterwards, even if the SKU's price changes.
type OrderItem struct {
	ItemID  uint `gorm:"column:item_id;primaryKey;autoIncrement" json:"item_id,omitempty"`
	OrderID uint `gorm:"column:order_id;not null;index" json:"order_id"`
	SkuID   uint `gorm:"column:sku_id;not null;index" json:"sku_id"`

	SKU      string `gorm:"column:sku;type:varchar(64);not null" json:"sku"`
	Name     string `gorm:"column:name;type:varchar(255)" json:"name"`
	SaleMode string `gorm:"column:sale_mode;type:varchar(16);not null" json:"sale_mode"`

	Grams        int     `gorm:"column:grams;not null" json:"grams"`
	PricePerGram float64 `gorm:"column:price_per_gram;type:decimal(12,4);not null" json:"price_per_gram"`
	LineTotal    float64 `gorm:"column:line_total;type:decimal(12,4);not null" json:"line_total"`

	AssemblyCode string       `gorm:"column:assembly_code;type:varchar(32)" json:"assembly_code,omitempty"`
	AssemblyType AssemblyType `gorm:"column:assembly_type;type:varchar(16)" json:"assembly_type,omitempty"`
	AssemblyFee  float64      `gorm:"column:assembly_fee;type:decimal(12,4);not null;default:0" json:"assembly_fee"`

	RowTotal float64 `gorm:"column:row_total;type:decimal(12,4);not null" json:"row_total"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OrderItem) TableName() string {
	return "sales_order_item"
}

package sales

import (
	"time"

	"gorm.io/datatypes"
)

// Order represents sales_order. paymentStatus = paid must coincide with exactly
// one stock-deduction pass having run for the order.
type Order struct {
	OrderID     uint   `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id,omitempty"`
	IncrementID string `gorm:"column:increment_id;type:varchar(32);uniqueIndex" json:"increment_id"`

	CustomerName  string `gorm:"column:customer_name;type:varchar(255)" json:"customer_name"`
	CustomerEmail string `gorm:"column:customer_email;type:varchar(255);index" json:"customer_email"`

	OrderStatus    OrderStatus    `gorm:"column:order_status;type:varchar(16);not null;default:'pending';index" json:"order_status"`
	PaymentStatus  PaymentStatus  `gorm:"column:payment_status;type:varchar(16);not null;default:'unpaid';index" json:"payment_status"`
	DeliveryStatus DeliveryStatus `gorm:"column:delivery_status;type:varchar(16);not null;default:'pending'" json:"delivery_status"`

	Subtotal       float64 `gorm:"column:subtotal;type:decimal(12,4);not null;default:0" json:"subtotal"`
	ShippingAmount float64 `gorm:"column:shipping_amount;type:decimal(12,4);not null;default:0" json:"shipping_amount"`
	DiscountAmount float64 `gorm:"column:discount_amount;type:decimal(12,4);not null;default:0" json:"discount_amount"`
	GrandTotal     float64 `gorm:"column:grand_total;type:decimal(12,4);not null;default:0" json:"grand_total"`

	PaymentRef string `gorm:"column:payment_ref;type:varchar(128)" json:"payment_ref,omitempty"`
	// Raw gateway callback body, kept for audits and dispute handling
	PaymentPayload datatypes.JSON `gorm:"column:payment_payload" json:"payment_payload,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`

	CreatedAt time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
	PaidAt    *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	ShippedAt *time.Time `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
}

func (Order) TableName() string {
	return "sales_order"
}

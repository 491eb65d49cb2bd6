package sales

import "time"

// OrderComment represents sales_order_comment, the order's audit trail.
// Payment captures and automatic cancellations append here.
type OrderComment struct {
	CommentID uint      `gorm:"column:comment_id;primaryKey;autoIncrement" json:"comment_id,omitempty"`
	OrderID   uint      `gorm:"column:order_id;not null;index" json:"order_id"`
	Comment   string    `gorm:"column:comment;type:varchar(512);not null" json:"comment"`
	Author    string    `gorm:"column:author;type:varchar(64)" json:"author,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OrderComment) TableName() string {
	return "sales_order_comment"
}

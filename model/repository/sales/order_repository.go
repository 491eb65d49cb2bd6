package sales

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	salesEntity "weftshop.GO/model/entity/sales"
)

// ErrOrderNotFound is returned when an order does not exist.
var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists an order with its items and assigns the increment ID from
// the generated primary key.
func (r *OrderRepository) Create(order *salesEntity.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		order.IncrementID = fmt.Sprintf("1%08d", order.OrderID)
		return tx.Model(&salesEntity.Order{}).
			Where("order_id = ?", order.OrderID).
			Update("increment_id", order.IncrementID).Error
	})
}

func (r *OrderRepository) FindByIncrementID(incrementID string) (*salesEntity.Order, error) {
	var o salesEntity.Order
	err := r.db.Preload("Items").Where("increment_id = ?", incrementID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByIncrementIDForUpdate loads the order with its items holding a row lock
// inside tx. The payment mutator's idempotency guard depends on this lock.
func (r *OrderRepository) FindByIncrementIDForUpdate(tx *gorm.DB, incrementID string) (*salesEntity.Order, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var o salesEntity.Order
	err := q.Preload("Items").Where("increment_id = ?", incrementID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Save persists status/total changes inside tx without touching items.
func (r *OrderRepository) Save(tx *gorm.DB, order *salesEntity.Order) error {
	return tx.Omit("Items").Save(order).Error
}

// StaleUnpaid returns unpaid, non-terminal orders created before the cutoff.
func (r *OrderRepository) StaleUnpaid(cutoff time.Time) ([]salesEntity.Order, error) {
	var orders []salesEntity.Order
	err := r.db.Preload("Items").
		Where("payment_status = ?", salesEntity.PaymentUnpaid).
		Where("order_status NOT IN ?", []salesEntity.OrderStatus{salesEntity.OrderCancelled, salesEntity.OrderCompleted}).
		Where("created_at < ?", cutoff).
		Order("order_id").
		Find(&orders).Error
	return orders, err
}

// AddComment appends to the order's audit trail inside tx.
func (r *OrderRepository) AddComment(tx *gorm.DB, orderID uint, author, comment string) error {
	return tx.Create(&salesEntity.OrderComment{
		OrderID: orderID,
		Author:  author,
		Comment: comment,
	}).Error
}

// Comments returns the audit trail, oldest first.
func (r *OrderRepository) Comments(orderID uint) ([]salesEntity.OrderComment, error) {
	var cs []salesEntity.OrderComment
	err := r.db.Where("order_id = ?", orderID).Order("comment_id").Find(&cs).Error
	return cs, err
}

package payment

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	salesEntity "weftshop.GO/model/entity/sales"
	stockEntity "weftshop.GO/model/entity/stock"
	catalogRepo "weftshop.GO/model/repository/catalog"
	salesRepo "weftshop.GO/model/repository/sales"
	stockRepo "weftshop.GO/model/repository/stock"
	"weftshop.GO/service/notification"
)

var (
	// ErrOrderNotFound mirrors the repository sentinel for callers.
	ErrOrderNotFound = errors.New("order not found")
	// ErrIllegalState is returned when the order cannot legally move to paid.
	ErrIllegalState = errors.New("illegal order state for payment")
)

// GatewayStatePaid is the only external state that triggers a mutation.
const GatewayStatePaid = "PAID"

// Confirmation is a decoded gateway callback.
type Confirmation struct {
	OrderID    string `json:"order_id" mapstructure:"order_id"`
	State      string `json:"state" mapstructure:"state"`
	PaymentRef string `json:"payment_ref" mapstructure:"payment_ref"`
}

// Result is the outcome of a confirmation attempt. AlreadyPaid means the
// idempotency guard fired: the call was a no-op and the order is returned
// unchanged. Ignored means the callback carried a non-paid state.
type Result struct {
	Order       *salesEntity.Order
	Applied     bool
	AlreadyPaid bool
	Ignored     bool
}

type Service struct {
	db        *gorm.DB
	orders    *salesRepo.OrderRepository
	skus      *catalogRepo.SkuRepository
	movements *stockRepo.MovementRepository
	notifier  notification.Notifier
}

func NewService(db *gorm.DB, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.NewLogNotifier()
	}
	return &Service{
		db:        db,
		orders:    salesRepo.NewOrderRepository(db),
		skus:      catalogRepo.NewSkuRepository(db),
		movements: stockRepo.NewMovementRepository(db),
		notifier:  notifier,
	}
}

// Confirm applies a payment-completion signal to an order. The whole mutation
// (idempotency check, status flip, per-item stock deduction, ledger append)
// runs in one transaction holding a row lock on the order. Duplicate
// deliveries therefore serialize, see the order already paid, and return
// without touching stock. rawPayload is stored on the order for audits.
//
// Both the gateway webhook and the admin "capture payment" action call this;
// there is no second stock-mutation path.
func (s *Service) Confirm(conf Confirmation, rawPayload []byte) (*Result, error) {
	if conf.State != GatewayStatePaid {
		// Non-paid callbacks (pending, expired, failed) are acknowledged and ignored.
		return &Result{Ignored: true}, nil
	}

	res := &Result{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.FindByIncrementIDForUpdate(tx, conf.OrderID)
		if err != nil {
			if errors.Is(err, salesRepo.ErrOrderNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		// Idempotency guard. Must stay inside the transaction: with the order
		// row locked, a racing duplicate blocks here until the first delivery
		// commits, then observes paid and backs off.
		if order.PaymentStatus == salesEntity.PaymentPaid {
			res.Order = order
			res.AlreadyPaid = true
			return nil
		}
		if !order.PaymentStatus.CanTransitionTo(salesEntity.PaymentPaid) {
			return fmt.Errorf("%w: payment status %s", ErrIllegalState, order.PaymentStatus)
		}
		if !order.OrderStatus.CanTransitionTo(salesEntity.OrderPaid) {
			return fmt.Errorf("%w: order status %s", ErrIllegalState, order.OrderStatus)
		}

		now := time.Now()
		order.OrderStatus = salesEntity.OrderPaid
		order.PaymentStatus = salesEntity.PaymentPaid
		order.PaidAt = &now
		order.PaymentRef = conf.PaymentRef
		if len(rawPayload) > 0 {
			order.PaymentPayload = datatypes.JSON(rawPayload)
		}
		if err := s.orders.Save(tx, order); err != nil {
			return err
		}

		for i := range order.Items {
			if err := s.deductItem(tx, order, &order.Items[i]); err != nil {
				return err
			}
		}

		if err := s.orders.AddComment(tx, order.OrderID, "payment",
			fmt.Sprintf("payment captured (ref %s)", conf.PaymentRef)); err != nil {
			return err
		}

		res.Order = order
		res.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Applied {
		// Post-commit side effects are best-effort: a failed mail must not
		// undo a committed stock deduction.
		if err := s.notifier.OrderPaid(res.Order); err != nil {
			log.Printf("payment: notify order %s failed: %v", res.Order.IncrementID, err)
		}
	}
	return res, nil
}

// deductItem applies one item's stock deduction and ledger row inside tx.
func (s *Service) deductItem(tx *gorm.DB, order *salesEntity.Order, item *salesEntity.OrderItem) error {
	sku, err := s.skus.FindByIDForUpdate(tx, item.SkuID)
	if err != nil {
		return fmt.Errorf("order %s item %s: %w", order.IncrementID, item.SKU, err)
	}

	movement := &stockEntity.StockMovement{
		SkuID:   sku.SkuID,
		Type:    stockEntity.MovementOut,
		OrderID: &order.OrderID,
		Note:    fmt.Sprintf("order %s paid", order.IncrementID),
	}

	switch catalogEntity.SaleMode(item.SaleMode) {
	case catalogEntity.SaleModePiece:
		sku.SoldOut = true
		sku.IsInStock = false
		movement.Grams = sku.WeightTotalG
		movement.SoldPiece = true

	case catalogEntity.SaleModeBulk:
		sku.AvailableGrams -= item.Grams
		if sku.AvailableGrams < 0 {
			// Quote raced another order; floor the cache, the ledger keeps the
			// true figure and stock-take reconciles the drift.
			sku.AvailableGrams = 0
		}
		sku.IsInStock = sku.AvailableGrams > 0
		movement.Grams = item.Grams

	default:
		return fmt.Errorf("order %s item %s: unknown sale mode %q", order.IncrementID, item.SKU, item.SaleMode)
	}

	if err := s.skus.Save(tx, sku); err != nil {
		return err
	}
	return s.movements.Append(tx, movement)
}

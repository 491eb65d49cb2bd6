package cancellation

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	salesEntity "weftshop.GO/model/entity/sales"
	stockEntity "weftshop.GO/model/entity/stock"
	catalogRepo "weftshop.GO/model/repository/catalog"
	salesRepo "weftshop.GO/model/repository/sales"
	stockRepo "weftshop.GO/model/repository/stock"
	"weftshop.GO/service/notification"
)

// SweepError records a single order's failure without aborting the batch.
type SweepError struct {
	IncrementID string
	Err         error
}

func (e SweepError) Error() string {
	return fmt.Sprintf("order %s: %v", e.IncrementID, e.Err)
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Cancelled []string
	Errors    []SweepError
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

// Sweep cancels unpaid orders older than the retention window and returns
// their reserved stock to the ledger. Each order runs in its own transaction;
// one stuck order is logged and skipped, never aborting the batch.
func (s *Service) Sweep(now time.Time, retention time.Duration) (*SweepResult, error) {
	cutoff := now.Add(-retention)
	stale, err := s.orders.StaleUnpaid(cutoff)
	if err != nil {
		return nil, fmt.Errorf("select stale orders: %w", err)
	}

	res := &SweepResult{}
	for i := range stale {
		order := &stale[i]
		if err := s.cancelOrder(order, now); err != nil {
			res.Errors = append(res.Errors, SweepError{IncrementID: order.IncrementID, Err: err})
			log.Printf("sweep: order %s failed: %v", order.IncrementID, err)
			continue
		}
		res.Cancelled = append(res.Cancelled, order.IncrementID)

		// Best-effort mail after commit; its failure does not affect the outcome.
		if err := s.notifier.OrderCancelled(order, "unpaid timeout"); err != nil {
			log.Printf("sweep: notify order %s failed: %v", order.IncrementID, err)
		}
	}
	return res, nil
}

func (s *Service) cancelOrder(order *salesEntity.Order, now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		// Re-load under lock: a payment may have landed between selection and here.
		locked, err := s.orders.FindByIncrementIDForUpdate(tx, order.IncrementID)
		if err != nil {
			return err
		}
		if locked.PaymentStatus != salesEntity.PaymentUnpaid ||
			locked.OrderStatus == salesEntity.OrderCancelled ||
			locked.OrderStatus == salesEntity.OrderCompleted {
			return nil
		}

		locked.OrderStatus = salesEntity.OrderCancelled
		if err := s.orders.Save(tx, locked); err != nil {
			return err
		}

		for i := range locked.Items {
			if err := s.returnItem(tx, locked, &locked.Items[i]); err != nil {
				return err
			}
		}

		elapsedDays := int(now.Sub(locked.CreatedAt).Hours() / 24)
		return s.orders.AddComment(tx, locked.OrderID, "system",
			fmt.Sprintf("auto-cancelled: unpaid for %d days", elapsedDays))
	})
}

// returnItem reverses one item's reservation inside tx.
func (s *Service) returnItem(tx *gorm.DB, order *salesEntity.Order, item *salesEntity.OrderItem) error {
	sku, err := s.skus.FindByIDForUpdate(tx, item.SkuID)
	if err != nil {
		return fmt.Errorf("item %s: %w", item.SKU, err)
	}

	movement := &stockEntity.StockMovement{
		SkuID:   sku.SkuID,
		Type:    stockEntity.MovementIn,
		OrderID: &order.OrderID,
		Note:    fmt.Sprintf("order %s auto-cancelled", order.IncrementID),
	}

	switch catalogEntity.SaleMode(item.SaleMode) {
	case catalogEntity.SaleModePiece:
		sku.SoldOut = false
		sku.IsInStock = true
		movement.Grams = sku.WeightTotalG

	case catalogEntity.SaleModeBulk:
		sku.AvailableGrams += item.Grams
		sku.IsInStock = sku.AvailableGrams > 0
		movement.Grams = item.Grams

	default:
		return fmt.Errorf("item %s: unknown sale mode %q", item.SKU, item.SaleMode)
	}

	if err := s.skus.Save(tx, sku); err != nil {
		return err
	}
	return s.movements.Append(tx, movement)
}

package notification

import (
	"log"

	salesEntity "weftshop.GO/model/entity/sales"
)

// Notifier is the collaborator interface for post-commit side effects
// (invoice mail, cancellation mail, conversion tracking). Implementations are
// fire-and-forget: callers log failures and never roll back stock mutations
// because of them.
type Notifier interface {
	OrderPaid(order *salesEntity.Order) error
	OrderCancelled(order *salesEntity.Order, reason string) error
}

// LogNotifier writes notifications to the application log. Stands in for the
// real mail/tracking integrations, which are outside this service.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) OrderPaid(order *salesEntity.Order) error {
	log.Printf("notify: order %s paid, invoice for %.2f to %s", order.IncrementID, order.GrandTotal, order.CustomerEmail)
	return nil
}

func (n *LogNotifier) OrderCancelled(order *salesEntity.Order, reason string) error {
	log.Printf("notify: order %s cancelled (%s), mail to %s", order.IncrementID, reason, order.CustomerEmail)
	return nil
}

package quote

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	salesEntity "weftshop.GO/model/entity/sales"
	catalogRepo "weftshop.GO/model/repository/catalog"
	salesRepo "weftshop.GO/model/repository/sales"
	pricingService "weftshop.GO/service/pricing"
)

// Quoting error taxonomy. Wrapped errors carry the user-presentable detail;
// API layers match the sentinel with errors.Is and surface err.Error().
var (
	ErrSkuNotFound       = errors.New("sku not found")
	ErrNotAvailable      = errors.New("not available")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPriceUnavailable  = errors.New("price unavailable")
)

// LineInput is one requested cart line. Grams is ignored for piece SKUs.
type LineInput struct {
	SKU      string `json:"sku"`
	Grams    int    `json:"grams,omitempty"`
	Assembly string `json:"assembly,omitempty"`
}

// QuotedItem is a fully priced line.
type QuotedItem struct {
	SkuID        uint                      `json:"sku_id"`
	SKU          string                    `json:"sku"`
	Name         string                    `json:"name"`
	SaleMode     catalogEntity.SaleMode    `json:"sale_mode"`
	Grams        int                       `json:"grams"`
	PricePerGram float64                   `json:"price_per_gram"`
	PriceSource  pricingService.PriceSource `json:"price_source"`
	LineTotal    float64                   `json:"line_total"`
	AssemblyCode string                    `json:"assembly_code"`
	AssemblyType salesEntity.AssemblyType  `json:"assembly_type"`
	AssemblyFee  float64                   `json:"assembly_fee"`
	RowTotal     float64                   `json:"row_total"`
}

// Quote is a priced cart preview. It reserves nothing: stock is only deducted
// at payment confirmation, so two carts can quote the same limited stock and
// the first completed payment wins.
type Quote struct {
	Items      []QuotedItem `json:"items"`
	Subtotal   float64      `json:"subtotal"`
	GrandTotal float64      `json:"grand_total"`
}

type Service struct {
	db      *gorm.DB
	skus    *catalogRepo.SkuRepository
	orders  *salesRepo.OrderRepository
	pricing *pricingService.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:      db,
		skus:    catalogRepo.NewSkuRepository(db),
		orders:  salesRepo.NewOrderRepository(db),
		pricing: pricingService.NewService(db),
	}
}

// Quote prices the given lines. Read-only and lock-free.
func (s *Service) Quote(lines []LineInput) (*Quote, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidQuantity)
	}
	q := &Quote{}
	for _, line := range lines {
		item, err := s.quoteLine(line)
		if err != nil {
			return nil, err
		}
		q.Items = append(q.Items, *item)
		q.Subtotal += item.LineTotal
		q.GrandTotal += item.RowTotal
	}
	return q, nil
}

func (s *Service) quoteLine(line LineInput) (*QuotedItem, error) {
	sku, err := s.skus.FindBySKU(line.SKU)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrSkuNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSkuNotFound, line.SKU)
		}
		return nil, err
	}

	grams, err := gramsFor(sku, line.Grams)
	if err != nil {
		return nil, err
	}

	pricePerGram, source, ok := s.pricing.ResolveForSku(sku)
	if !ok {
		return nil, fmt.Errorf("%w: no price for %s", ErrPriceUnavailable, sku.SKU)
	}

	option := AssemblyOptionFor(line.Assembly)
	lineTotal := pricePerGram * float64(grams)
	fee := option.Fee(grams)

	return &QuotedItem{
		SkuID:        sku.SkuID,
		SKU:          sku.SKU,
		Name:         sku.Name,
		SaleMode:     sku.SaleMode,
		Grams:        grams,
		PricePerGram: pricePerGram,
		PriceSource:  source,
		LineTotal:    lineTotal,
		AssemblyCode: option.Code,
		AssemblyType: option.Type,
		AssemblyFee:  fee,
		RowTotal:     lineTotal + fee,
	}, nil
}

// gramsFor validates availability and quantity constraints and returns the
// grams the line will carry.
func gramsFor(sku *catalogEntity.Sku, wanted int) (int, error) {
	switch sku.SaleMode {
	case catalogEntity.SaleModePiece:
		if sku.SoldOut {
			return 0, fmt.Errorf("%w: piece %s is sold", ErrNotAvailable, sku.SKU)
		}
		return sku.WeightTotalG, nil

	case catalogEntity.SaleModeBulk:
		if sku.AvailableGrams <= 0 {
			return 0, fmt.Errorf("%w: %s is out of stock", ErrNotAvailable, sku.SKU)
		}
		if wanted < sku.MinOrderGrams {
			return 0, fmt.Errorf("%w: minimum order for %s is %dg", ErrInvalidQuantity, sku.SKU, sku.MinOrderGrams)
		}
		if sku.StepGrams > 0 && (wanted-sku.MinOrderGrams)%sku.StepGrams != 0 {
			return 0, fmt.Errorf("%w: %s must be ordered in %dg steps starting at %dg",
				ErrInvalidQuantity, sku.SKU, sku.StepGrams, sku.MinOrderGrams)
		}
		if wanted > sku.AvailableGrams {
			return 0, fmt.Errorf("%w: only %dg of %s remaining", ErrInsufficientStock, sku.AvailableGrams, sku.SKU)
		}
		return wanted, nil
	}
	return 0, fmt.Errorf("%w: %s has unknown sale mode %q", ErrNotAvailable, sku.SKU, sku.SaleMode)
}

// OrderInput carries customer fields for persisting a quote as an order.
type OrderInput struct {
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Lines         []LineInput `json:"lines"`
}

// PlaceOrder quotes the lines and persists them as a pending, unpaid order.
// Item rows snapshot price and grams at order time.
func (s *Service) PlaceOrder(input OrderInput) (*salesEntity.Order, error) {
	q, err := s.Quote(input.Lines)
	if err != nil {
		return nil, err
	}

	order := &salesEntity.Order{
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.CustomerEmail,
		OrderStatus:    salesEntity.OrderPending,
		PaymentStatus:  salesEntity.PaymentUnpaid,
		DeliveryStatus: salesEntity.DeliveryPending,
		Subtotal:       q.Subtotal,
		GrandTotal:     q.GrandTotal,
	}
	for _, it := range q.Items {
		order.Items = append(order.Items, salesEntity.OrderItem{
			SkuID:        it.SkuID,
			SKU:          it.SKU,
			Name:         it.Name,
			SaleMode:     string(it.SaleMode),
			Grams:        it.Grams,
			PricePerGram: it.PricePerGram,
			LineTotal:    it.LineTotal,
			AssemblyCode: it.AssemblyCode,
			AssemblyType: it.AssemblyType,
			AssemblyFee:  it.AssemblyFee,
			RowTotal:     it.RowTotal,
		})
	}
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

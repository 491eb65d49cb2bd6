package resolvers

import (
	"time"

	gqlmodels "weftshop.GO/graphql/models"
	catalogEntity "weftshop.GO/model/entity/catalog"
	salesEntity "weftshop.GO/model/entity/sales"
	stockEntity "weftshop.GO/model/entity/stock"
)

func mapSku(s *catalogEntity.Sku) *gqlmodels.Sku {
	return &gqlmodels.Sku{
		SKU:            s.SKU,
		Name:           s.Name,
		SaleMode:       string(s.SaleMode),
		Category:       s.Category,
		Tier:           s.Tier,
		LengthCm:       int32(s.LengthCm),
		Shade:          int32(s.Shade),
		PricePerGram:   s.PricePerGram,
		WeightTotalG:   int32(s.WeightTotalG),
		AvailableGrams: int32(s.AvailableGrams),
		MinOrderGrams:  int32(s.MinOrderGrams),
		StepGrams:      int32(s.StepGrams),
		InStock:        s.IsInStock,
		SoldOut:        s.SoldOut,
	}
}

func mapOrder(o *salesEntity.Order) *gqlmodels.Order {
	out := &gqlmodels.Order{
		IncrementID:    o.IncrementID,
		OrderStatus:    string(o.OrderStatus),
		PaymentStatus:  string(o.PaymentStatus),
		DeliveryStatus: string(o.DeliveryStatus),
		Subtotal:       o.Subtotal,
		GrandTotal:     o.GrandTotal,
		Items:          make([]gqlmodels.OrderItem, 0, len(o.Items)),
	}
	for i := range o.Items {
		out.Items = append(out.Items, mapOrderItem(&o.Items[i]))
	}
	return out
}

func mapOrderItem(it *salesEntity.OrderItem) gqlmodels.OrderItem {
	m := gqlmodels.OrderItem{
		SKU:          it.SKU,
		Name:         it.Name,
		SaleMode:     it.SaleMode,
		Grams:        int32(it.Grams),
		PricePerGram: it.PricePerGram,
		LineTotal:    it.LineTotal,
		AssemblyFee:  it.AssemblyFee,
		RowTotal:     it.RowTotal,
	}
	if it.AssemblyCode != "" {
		code := it.AssemblyCode
		m.AssemblyCode = &code
	}
	return m
}

func mapMovement(mv *stockEntity.StockMovement) *gqlmodels.StockMovement {
	m := &gqlmodels.StockMovement{
		Type:      string(mv.Type),
		Grams:     int32(mv.Grams),
		SoldPiece: mv.SoldPiece,
		CreatedAt: mv.CreatedAt.Format(time.RFC3339),
	}
	if mv.OrderID != nil {
		id := int32(*mv.OrderID)
		m.OrderID = &id
	}
	if mv.Note != "" {
		note := mv.Note
		m.Note = &note
	}
	return m
}

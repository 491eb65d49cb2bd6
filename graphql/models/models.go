package models

// GraphQL view models. Field names match the schema (case-insensitive) so
// graphql-go's field resolvers serve them directly. Int fields are int32 per
// the GraphQL Int type.

type Sku struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	SaleMode       string  `json:"sale_mode"`
	Category       string  `json:"category"`
	Tier           string  `json:"tier"`
	LengthCm       int32   `json:"length_cm"`
	Shade          int32   `json:"shade"`
	PricePerGram   float64 `json:"price_per_gram"`
	WeightTotalG   int32   `json:"weight_total_g"`
	AvailableGrams int32   `json:"available_grams"`
	MinOrderGrams  int32   `json:"min_order_grams"`
	StepGrams      int32   `json:"step_grams"`
	InStock        bool    `json:"in_stock"`
	SoldOut        bool    `json:"sold_out"`
}

type PriceQuote struct {
	PricePerGram float64 `json:"price_per_gram"`
	Source       string  `json:"source"`
}

type Order struct {
	IncrementID    string      `json:"increment_id"`
	OrderStatus    string      `json:"order_status"`
	PaymentStatus  string      `json:"payment_status"`
	DeliveryStatus string      `json:"delivery_status"`
	Subtotal       float64     `json:"subtotal"`
	GrandTotal     float64     `json:"grand_total"`
	Items          []OrderItem `json:"items"`
}

type OrderItem struct {
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	SaleMode     string  `json:"sale_mode"`
	Grams        int32   `json:"grams"`
	PricePerGram float64 `json:"price_per_gram"`
	LineTotal    float64 `json:"line_total"`
	AssemblyCode *string `json:"assembly_code,omitempty"`
	AssemblyFee  float64 `json:"assembly_fee"`
	RowTotal     float64 `json:"row_total"`
}

type StockMovement struct {
	Type      string  `json:"type"`
	Grams     int32   `json:"grams"`
	OrderID   *int32  `json:"order_id,omitempty"`
	Note      *string `json:"note,omitempty"`
	SoldPiece bool    `json:"sold_piece"`
	CreatedAt string  `json:"created_at"`
}

package resolvers

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	gqlmodels "weftshop.GO/graphql/models"
	gqlregistry "weftshop.GO/graphql/registry"
	catalogRepo "weftshop.GO/model/repository/catalog"
	salesRepo "weftshop.GO/model/repository/sales"
	stockRepo "weftshop.GO/model/repository/stock"
	pricingService "weftshop.GO/service/pricing"
)

// QueryResolver is the single resolver for all Query fields. New Query
// fields: use RegisterSchemaExtension + add a method here, or use _extension
// for fully dynamic resolvers.
type QueryResolver struct {
	db      *gorm.DB
	pricing *pricingService.Service
}

func NewQueryResolver(db *gorm.DB) *QueryResolver {
	return &QueryResolver{db: db, pricing: pricingService.NewService(db)}
}

func (r *QueryResolver) skuRepo() *catalogRepo.SkuRepository {
	return catalogRepo.NewSkuRepository(r.db)
}

// SkuArgs matches the sku query arguments.
type SkuArgs struct {
	Sku string
}

func (r *QueryResolver) Sku(ctx context.Context, args SkuArgs) (*gqlmodels.Sku, error) {
	sku, err := r.skuRepo().FindBySKU(args.Sku)
	if errors.Is(err, catalogRepo.ErrSkuNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapSku(sku), nil
}

// SkusArgs matches the skus query arguments.
type SkusArgs struct {
	Category *string
	Tier     *string
	Limit    *int32
}

func (r *QueryResolver) Skus(ctx context.Context, args SkusArgs) ([]*gqlmodels.Sku, error) {
	var category, tier string
	if args.Category != nil {
		category = *args.Category
	}
	if args.Tier != nil {
		tier = *args.Tier
	}
	limit := 50
	if args.Limit != nil && *args.Limit > 0 {
		limit = int(*args.Limit)
	}
	skus, err := r.skuRepo().List(category, tier, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Sku, 0, len(skus))
	for i := range skus {
		out = append(out, mapSku(&skus[i]))
	}
	return out, nil
}

// ResolvePriceArgs matches the resolvePrice query arguments.
type ResolvePriceArgs struct {
	Category string
	Tier     string
	LengthCm int32
	Shade    int32
}

func (r *QueryResolver) ResolvePrice(ctx context.Context, args ResolvePriceArgs) (*gqlmodels.PriceQuote, error) {
	price, ok := r.pricing.ResolveMatrix(args.Category, args.Tier, uint16(args.LengthCm), uint16(args.Shade))
	if !ok {
		return nil, nil
	}
	return &gqlmodels.PriceQuote{PricePerGram: price, Source: string(pricingService.SourceMatrix)}, nil
}

// OrderArgs matches the order query arguments.
type OrderArgs struct {
	IncrementId string
}

func (r *QueryResolver) Order(ctx context.Context, args OrderArgs) (*gqlmodels.Order, error) {
	order, err := salesRepo.NewOrderRepository(r.db).FindByIncrementID(args.IncrementId)
	if errors.Is(err, salesRepo.ErrOrderNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapOrder(order), nil
}

// StockMovementsArgs matches the stockMovements query arguments.
type StockMovementsArgs struct {
	Sku   string
	Limit *int32
}

func (r *QueryResolver) StockMovements(ctx context.Context, args StockMovementsArgs) ([]*gqlmodels.StockMovement, error) {
	sku, err := r.skuRepo().FindBySKU(args.Sku)
	if errors.Is(err, catalogRepo.ErrSkuNotFound) {
		return []*gqlmodels.StockMovement{}, nil
	}
	if err != nil {
		return nil, err
	}
	limit := 100
	if args.Limit != nil && *args.Limit > 0 {
		limit = int(*args.Limit)
	}
	movements, err := stockRepo.NewMovementRepository(r.db).ListBySKU(sku.SkuID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.StockMovement, 0, len(movements))
	for i := range movements {
		out = append(out, mapMovement(&movements[i]))
	}
	return out, nil
}

// Extension dispatches to registered custom resolvers.
func (r *QueryResolver) Extension(ctx context.Context, args struct {
	Name string
	Args *string
}) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		_ = json.Unmarshal([]byte(*args.Args), &m)
	}
	out, err := gqlregistry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, _ := json.Marshal(out)
	s := string(b)
	return &s, nil
}

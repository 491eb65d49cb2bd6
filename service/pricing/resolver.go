package pricing

import (
	"gorm.io/gorm"

	"weftshop.GO/core/cache"
	catalogEntity "weftshop.GO/model/entity/catalog"
	pricingRepo "weftshop.GO/model/repository/pricing"
)

// PriceSource says where a resolved price came from.
type PriceSource string

const (
	SourceMatrix      PriceSource = "matrix"
	SourceSkuFallback PriceSource = "sku"
)

// CacheTag groups all cached matrix lookups; admin upserts invalidate it.
const CacheTag = "pricing:matrix"

const cacheTTLSeconds = 300

// Resolver resolves a price-per-gram for a classification tuple, falling back
// to the SKU's own stored price when the matrix has no entry. Keeping the
// fallback chain here keeps the "no price found" failure mode in one place.
type Resolver interface {
	ResolveMatrix(category, tier string, lengthCm, shade uint16) (float64, bool)
	ResolveForSku(sku *catalogEntity.Sku) (float64, PriceSource, bool)
}

type Service struct {
	matrix *pricingRepo.PriceMatrixRepository
	cache  *cache.Cache
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		matrix: pricingRepo.NewPriceMatrixRepository(db),
		cache:  cache.GetInstance(),
	}
}

// ResolveMatrix looks up the matrix only. Absence is not an error; admin
// preview treats it as informational.
func (s *Service) ResolveMatrix(category, tier string, lengthCm, shade uint16) (float64, bool) {
	if v, ok := s.cache.GetN("pricematrix", category, tier, lengthCm, shade); ok {
		if price, isFloat := v.(float64); isFloat {
			return price, price > 0
		}
	}
	entry, err := s.matrix.FindForShade(category, tier, lengthCm, shade)
	if err != nil {
		// cache the miss too, so hot unknown tuples don't hammer the DB
		s.cache.SetN([]interface{}{"pricematrix", category, tier, lengthCm, shade}, float64(0), cacheTTLSeconds, []string{CacheTag})
		return 0, false
	}
	s.cache.SetN([]interface{}{"pricematrix", category, tier, lengthCm, shade}, entry.PricePerGram, cacheTTLSeconds, []string{CacheTag})
	return entry.PricePerGram, true
}

// ResolveForSku runs the full fallback chain: matrix first, then the SKU's
// cached price. The final false means no price exists anywhere.
func (s *Service) ResolveForSku(sku *catalogEntity.Sku) (float64, PriceSource, bool) {
	if price, ok := s.ResolveMatrix(sku.Category, sku.Tier, sku.LengthCm, sku.Shade); ok {
		return price, SourceMatrix, true
	}
	if sku.PricePerGram > 0 {
		return sku.PricePerGram, SourceSkuFallback, true
	}
	return 0, "", false
}

// Invalidate drops all cached matrix lookups. Called after admin upserts.
func (s *Service) Invalidate() {
	s.cache.DeleteByTag(CacheTag)
}

package stock

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Drift is one SKU whose cached availability disagreed with its ledger.
type Drift struct {
	SKU       string `json:"sku"`
	Cached    int    `json:"cached"`
	LedgerSum int    `json:"ledger_sum"`
}

// RebuildResult summarizes a rebuild run.
type RebuildResult struct {
	Checked   int     `json:"checked"`
	Corrected int     `json:"corrected"`
	Drifts    []Drift `json:"drifts,omitempty"`
}

// Rebuild re-derives every bulk SKU's cached availability strictly from the
// ledger's signed sum and rewrites the cache where it drifted. DryRun reports
// without writing.
func (s *Service) Rebuild(dryRun bool) (*RebuildResult, error) {
	skus, err := s.skus.ListBulk()
	if err != nil {
		return nil, fmt.Errorf("list bulk skus: %w", err)
	}

	result := &RebuildResult{}
	for i := range skus {
		sku := &skus[i]
		result.Checked++

		sum, err := s.movements.SignedSum(sku.SkuID)
		if err != nil {
			return nil, fmt.Errorf("ledger sum for %s: %w", sku.SKU, err)
		}
		if sum < 0 {
			log.Printf("stock rebuild: %s ledger sum is negative (%d), flooring to 0", sku.SKU, sum)
			sum = 0
		}
		if sum == sku.AvailableGrams {
			continue
		}

		result.Drifts = append(result.Drifts, Drift{SKU: sku.SKU, Cached: sku.AvailableGrams, LedgerSum: sum})
		if dryRun {
			continue
		}

		if err := s.db.Transaction(func(tx *gorm.DB) error {
			locked, err := s.skus.FindByIDForUpdate(tx, sku.SkuID)
			if err != nil {
				return err
			}
			locked.AvailableGrams = sum
			locked.IsInStock = sum > 0
			return s.skus.Save(tx, locked)
		}); err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", sku.SKU, err)
		}
		result.Corrected++
	}
	return result, nil
}

// Verify reports ledger/cache drift without writing. Convenience wrapper used
// by the CLI and the weekly cron job.
func (s *Service) Verify() (*RebuildResult, error) {
	return s.Rebuild(true)
}

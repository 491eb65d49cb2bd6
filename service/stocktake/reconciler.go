package stocktake

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	stockEntity "weftshop.GO/model/entity/stock"
	catalogRepo "weftshop.GO/model/repository/catalog"
	stockRepo "weftshop.GO/model/repository/stock"
)

var (
	// ErrNotFound mirrors the repository sentinel for callers.
	ErrNotFound = errors.New("stock take not found")
	// ErrConflict is returned for illegal status moves: completing a completed
	// take, deleting a completed one, counting into a terminal session.
	ErrConflict = errors.New("stock take status conflict")
)

// CountInput is one counted SKU for recordCounts.
type CountInput struct {
	SKU           string `json:"sku"`
	CountedGrams  int    `json:"counted_grams"`
	ExpectedGrams int    `json:"expected_grams"`
	Location      string `json:"location,omitempty"`
}

type Service struct {
	db        *gorm.DB
	takes     *stockRepo.StockTakeRepository
	skus      *catalogRepo.SkuRepository
	movements *stockRepo.MovementRepository
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:        db,
		takes:     stockRepo.NewStockTakeRepository(db),
		skus:      catalogRepo.NewSkuRepository(db),
		movements: stockRepo.NewMovementRepository(db),
	}
}

// Create opens a new PLANNED session.
func (s *Service) Create(code, note string) (*stockEntity.StockTake, error) {
	st := &stockEntity.StockTake{
		Code:   code,
		Status: stockEntity.StockTakePlanned,
		Note:   note,
	}
	if err := s.takes.Create(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Get returns the session with items and per-item variance.
func (s *Service) Get(id uint) (*stockEntity.StockTake, error) {
	st, err := s.takes.FindByID(id)
	if errors.Is(err, stockRepo.ErrStockTakeNotFound) {
		return nil, ErrNotFound
	}
	return st, err
}

// RecordCounts appends counted items with difference = counted − expected.
// May be called repeatedly before completion; the first call moves a PLANNED
// session to IN_PROGRESS.
func (s *Service) RecordCounts(id uint, counts []CountInput) (*stockEntity.StockTake, error) {
	var result *stockEntity.StockTake
	err := s.db.Transaction(func(tx *gorm.DB) error {
		st, err := s.takes.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, stockRepo.ErrStockTakeNotFound) {
				return ErrNotFound
			}
			return err
		}
		if st.Status != stockEntity.StockTakePlanned && st.Status != stockEntity.StockTakeInProgress {
			return fmt.Errorf("%w: cannot count into %s session", ErrConflict, st.Status)
		}

		items := make([]stockEntity.StockTakeItem, 0, len(counts))
		for _, c := range counts {
			sku, err := s.skus.FindBySKU(c.SKU)
			if err != nil {
				return fmt.Errorf("count for %s: %w", c.SKU, err)
			}
			items = append(items, stockEntity.StockTakeItem{
				StockTakeID:     st.StockTakeID,
				SkuID:           sku.SkuID,
				Location:        c.Location,
				ExpectedGrams:   c.ExpectedGrams,
				CountedGrams:    c.CountedGrams,
				DifferenceGrams: c.CountedGrams - c.ExpectedGrams,
			})
		}
		if err := s.takes.AppendItems(tx, items); err != nil {
			return err
		}

		if st.Status == stockEntity.StockTakePlanned {
			st.Status = stockEntity.StockTakeInProgress
			if err := s.takes.Save(tx, st); err != nil {
				return err
			}
		}
		result = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.takes.FindByID(result.StockTakeID)
}

// Transition moves the session's status through the state machine.
func (s *Service) Transition(id uint, next stockEntity.StockTakeStatus) (*stockEntity.StockTake, error) {
	if next == stockEntity.StockTakeCompleted {
		return s.Complete(id)
	}
	var result *stockEntity.StockTake
	err := s.db.Transaction(func(tx *gorm.DB) error {
		st, err := s.takes.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, stockRepo.ErrStockTakeNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !st.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s → %s", ErrConflict, st.Status, next)
		}
		st.Status = next
		if err := s.takes.Save(tx, st); err != nil {
			return err
		}
		result = st
		return nil
	})
	return result, err
}

// Complete finalizes the session: every item with a non-zero difference gets a
// signed ADJUST ledger row and the SKU's availability is overwritten to the
// counted value. Re-running against a completed take is rejected as a
// conflict, never re-applied; the status guard under the row lock is what
// makes completion idempotent in effect.
func (s *Service) Complete(id uint) (*stockEntity.StockTake, error) {
	var result *stockEntity.StockTake
	err := s.db.Transaction(func(tx *gorm.DB) error {
		st, err := s.takes.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, stockRepo.ErrStockTakeNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !st.Status.CanTransitionTo(stockEntity.StockTakeCompleted) {
			return fmt.Errorf("%w: cannot complete %s session", ErrConflict, st.Status)
		}

		for i := range st.Items {
			if err := s.applyItem(tx, st, &st.Items[i]); err != nil {
				return err
			}
		}

		now := time.Now()
		st.Status = stockEntity.StockTakeCompleted
		st.CompletedAt = &now
		if err := s.takes.Save(tx, st); err != nil {
			return err
		}
		result = st
		return nil
	})
	return result, err
}

func (s *Service) applyItem(tx *gorm.DB, st *stockEntity.StockTake, item *stockEntity.StockTakeItem) error {
	sku, err := s.skus.FindByIDForUpdate(tx, item.SkuID)
	if err != nil {
		return fmt.Errorf("stock take %s item %d: %w", st.Code, item.ItemID, err)
	}

	if item.DifferenceGrams != 0 {
		if err := s.movements.Append(tx, &stockEntity.StockMovement{
			SkuID: sku.SkuID,
			Type:  stockEntity.MovementAdjust,
			Grams: item.DifferenceGrams,
			Note:  fmt.Sprintf("stock take %s variance", st.Code),
		}); err != nil {
			return err
		}
	}

	sku.AvailableGrams = item.CountedGrams
	sku.IsInStock = item.CountedGrams > 0
	if catalogEntity.SaleMode(sku.SaleMode) == catalogEntity.SaleModePiece {
		sku.SoldOut = item.CountedGrams <= 0
	}
	return s.skus.Save(tx, sku)
}

// Delete removes a session. Completed sessions are immutable history and
// cannot be deleted.
func (s *Service) Delete(id uint) error {
	st, err := s.takes.FindByID(id)
	if err != nil {
		if errors.Is(err, stockRepo.ErrStockTakeNotFound) {
			return ErrNotFound
		}
		return err
	}
	if st.Status == stockEntity.StockTakeCompleted {
		return fmt.Errorf("%w: completed stock take cannot be deleted", ErrConflict)
	}
	return s.takes.Delete(st)
}

// List returns recent sessions without items.
func (s *Service) List(limit int) ([]stockEntity.StockTake, error) {
	return s.takes.List(limit)
}

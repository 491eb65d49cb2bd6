package stock

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	stockEntity "weftshop.GO/model/entity/stock"
	catalogRepo "weftshop.GO/model/repository/catalog"
	stockRepo "weftshop.GO/model/repository/stock"
)

// IntakeItemInput is the JSON input for the stock intake API. New SKUs are
// created on first sight; existing SKUs get their pool topped up.
type IntakeItemInput struct {
	SKU           string  `json:"sku"`
	Name          string  `json:"name,omitempty"`
	SaleMode      string  `json:"sale_mode,omitempty"`
	Category      string  `json:"category,omitempty"`
	Tier          string  `json:"tier,omitempty"`
	LengthCm      uint16  `json:"length_cm,omitempty"`
	Shade         uint16  `json:"shade,omitempty"`
	PricePerGram  float64 `json:"price_per_gram,omitempty"`
	Grams         int     `json:"grams"`
	MinOrderGrams int     `json:"min_order_grams,omitempty"`
	StepGrams     int     `json:"step_grams,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// IntakeResult holds the result of an intake run.
type IntakeResult struct {
	Received int      `json:"received"`
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

type Service struct {
	db        *gorm.DB
	skus      *catalogRepo.SkuRepository
	movements *stockRepo.MovementRepository
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:        db,
		skus:      catalogRepo.NewSkuRepository(db),
		movements: stockRepo.NewMovementRepository(db),
	}
}

// Intake books received goods: an IN ledger row per item plus the availability
// bump. Each item commits independently so one bad row does not discard a
// whole delivery.
func (s *Service) Intake(items []IntakeItemInput) (*IntakeResult, error) {
	result := &IntakeResult{Received: len(items)}
	for _, it := range items {
		if it.SKU == "" {
			result.Skipped++
			result.Warnings = append(result.Warnings, "empty sku, skipping")
			continue
		}
		if it.Grams <= 0 {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("sku=%s: grams must be positive", it.SKU))
			continue
		}
		created, err := s.intakeOne(it)
		if err != nil {
			result.Skipped++
			result.Warnings = append(result.Warnings, fmt.Sprintf("sku=%s: %v", it.SKU, err))
			continue
		}
		if created {
			result.Created++
		}
	}
	return result, nil
}

func (s *Service) intakeOne(it IntakeItemInput) (created bool, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		sku, ferr := s.skus.FindBySKUForUpdate(tx, it.SKU)
		switch {
		case errors.Is(ferr, catalogRepo.ErrSkuNotFound):
			sku, ferr = s.createSku(tx, it)
			if ferr != nil {
				return ferr
			}
			created = true
		case ferr != nil:
			return ferr
		}

		switch sku.SaleMode {
		case catalogEntity.SaleModePiece:
			sku.WeightTotalG = it.Grams
			sku.SoldOut = false
			sku.IsInStock = true
		case catalogEntity.SaleModeBulk:
			sku.AvailableGrams += it.Grams
			sku.IsInStock = sku.AvailableGrams > 0
		default:
			return fmt.Errorf("unknown sale mode %q", sku.SaleMode)
		}
		if err := s.skus.Save(tx, sku); err != nil {
			return err
		}

		note := it.Note
		if note == "" {
			note = "stock intake"
		}
		return s.movements.Append(tx, &stockEntity.StockMovement{
			SkuID: sku.SkuID,
			Type:  stockEntity.MovementIn,
			Grams: it.Grams,
			Note:  note,
		})
	})
	return created, err
}

func (s *Service) createSku(tx *gorm.DB, it IntakeItemInput) (*catalogEntity.Sku, error) {
	mode := catalogEntity.SaleMode(it.SaleMode)
	if !mode.Valid() {
		return nil, fmt.Errorf("new sku needs a valid sale_mode, got %q", it.SaleMode)
	}
	sku := &catalogEntity.Sku{
		SKU:           it.SKU,
		Name:          it.Name,
		SaleMode:      mode,
		Category:      it.Category,
		Tier:          it.Tier,
		LengthCm:      it.LengthCm,
		Shade:         it.Shade,
		PricePerGram:  it.PricePerGram,
		MinOrderGrams: it.MinOrderGrams,
		StepGrams:     it.StepGrams,
		IsInStock:     true,
	}
	if err := tx.Create(sku).Error; err != nil {
		return nil, err
	}
	return sku, nil
}

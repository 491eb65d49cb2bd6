package stock

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	stockEntity "weftshop.GO/model/entity/stock"
)

// ErrStockTakeNotFound is returned when a stock-take session does not exist.
var ErrStockTakeNotFound = errors.New("stock take not found")

type StockTakeRepository struct {
	db *gorm.DB
}

func NewStockTakeRepository(db *gorm.DB) *StockTakeRepository {
	return &StockTakeRepository{db: db}
}

func (r *StockTakeRepository) Create(st *stockEntity.StockTake) error {
	return r.db.Create(st).Error
}

func (r *StockTakeRepository) FindByID(id uint) (*stockEntity.StockTake, error) {
	var st stockEntity.StockTake
	err := r.db.Preload("Items").First(&st, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStockTakeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// FindByIDForUpdate locks the session row inside tx so concurrent completion
// attempts serialize on it.
func (r *StockTakeRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*stockEntity.StockTake, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var st stockEntity.StockTake
	err := q.Preload("Items").First(&st, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStockTakeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *StockTakeRepository) AppendItems(tx *gorm.DB, items []stockEntity.StockTakeItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *StockTakeRepository) Save(tx *gorm.DB, st *stockEntity.StockTake) error {
	return tx.Omit("Items").Save(st).Error
}

func (r *StockTakeRepository) Delete(st *stockEntity.StockTake) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock_take_id = ?", st.StockTakeID).
			Delete(&stockEntity.StockTakeItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(st).Error
	})
}

func (r *StockTakeRepository) List(limit int) ([]stockEntity.StockTake, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var takes []stockEntity.StockTake
	err := r.db.Order("stock_take_id DESC").Limit(limit).Find(&takes).Error
	return takes, err
}

package stock

import (
	"database/sql"

	"gorm.io/gorm"

	stockEntity "weftshop.GO/model/entity/stock"
)

type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Append writes a ledger row inside tx. The ledger is append-only; there is no
// update or delete path in this repository on purpose.
func (r *MovementRepository) Append(tx *gorm.DB, m *stockEntity.StockMovement) error {
	return tx.Create(m).Error
}

// ListBySKU returns the newest movements for a SKU.
func (r *MovementRepository) ListBySKU(skuID uint, limit int) ([]stockEntity.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []stockEntity.StockMovement
	err := r.db.Where("sku_id = ?", skuID).
		Order("movement_id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListByOrder returns movements referencing an order.
func (r *MovementRepository) ListByOrder(orderID uint) ([]stockEntity.StockMovement, error) {
	var rows []stockEntity.StockMovement
	err := r.db.Where("order_id = ?", orderID).Order("movement_id").Find(&rows).Error
	return rows, err
}

// SignedSum returns the signed gram total over a SKU's ledger, the authoritative
// availability for BULK_G SKUs.
func (r *MovementRepository) SignedSum(skuID uint) (int, error) {
	const query = `
		SELECT COALESCE(SUM(CASE type
			WHEN 'IN' THEN grams
			WHEN 'OUT' THEN -grams
			ELSE grams END), 0)
		FROM stock_movement WHERE sku_id = ?
	`
	var total sql.NullInt64
	if err := r.db.Raw(query, skuID).Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}

// CountByOrderAndType counts ledger rows for an order, used to assert the
// exactly-once deduction property.
func (r *MovementRepository) CountByOrderAndType(orderID uint, typ stockEntity.MovementType) (int64, error) {
	var n int64
	err := r.db.Model(&stockEntity.StockMovement{}).
		Where("order_id = ? AND type = ?", orderID, typ).
		Count(&n).Error
	return n, err
}

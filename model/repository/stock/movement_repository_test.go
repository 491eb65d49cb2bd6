package stock

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	stockEntity "weftshop.GO/model/entity/stock"
)

func movementTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&stockEntity.StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSignedSum(t *testing.T) {
	db := movementTestDB(t)
	repo := NewMovementRepository(db)

	rows := []stockEntity.StockMovement{
		{SkuID: 1, Type: stockEntity.MovementIn, Grams: 500},
		{SkuID: 1, Type: stockEntity.MovementOut, Grams: 120},
		{SkuID: 1, Type: stockEntity.MovementAdjust, Grams: -15},
		{SkuID: 1, Type: stockEntity.MovementAdjust, Grams: 5},
		{SkuID: 2, Type: stockEntity.MovementIn, Grams: 999}, // other sku, excluded
	}
	for i := range rows {
		if err := repo.Append(db, &rows[i]); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	sum, err := repo.SignedSum(1)
	if err != nil {
		t.Fatalf("SignedSum: %v", err)
	}
	if want := 500 - 120 - 15 + 5; sum != want {
		t.Errorf("SignedSum = %d, want %d", sum, want)
	}
}

func TestSignedSum_EmptyLedger(t *testing.T) {
	db := movementTestDB(t)
	repo := NewMovementRepository(db)

	sum, err := repo.SignedSum(42)
	if err != nil {
		t.Fatalf("SignedSum: %v", err)
	}
	if sum != 0 {
		t.Errorf("SignedSum on empty ledger = %d, want 0", sum)
	}
}

func TestSignedGrams(t *testing.T) {
	cases := []struct {
		typ  stockEntity.MovementType
		in   int
		want int
	}{
		{stockEntity.MovementIn, 100, 100},
		{stockEntity.MovementOut, 100, -100},
		{stockEntity.MovementAdjust, -15, -15},
		{stockEntity.MovementAdjust, 7, 7},
	}
	for _, c := range cases {
		m := stockEntity.StockMovement{Type: c.typ, Grams: c.in}
		if got := m.SignedGrams(); got != c.want {
			t.Errorf("SignedGrams(%s, %d) = %d, want %d", c.typ, c.in, got, c.want)
		}
	}
}

func TestListBySKU_NewestFirst(t *testing.T) {
	db := movementTestDB(t)
	repo := NewMovementRepository(db)

	for _, g := range []int{10, 20, 30} {
		if err := repo.Append(db, &stockEntity.StockMovement{SkuID: 1, Type: stockEntity.MovementIn, Grams: g}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	rows, err := repo.ListBySKU(1, 2)
	if err != nil {
		t.Fatalf("ListBySKU: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].Grams != 30 || rows[1].Grams != 20 {
		t.Errorf("order = [%d %d], want newest first [30 20]", rows[0].Grams, rows[1].Grams)
	}
}

func TestCountByOrderAndType(t *testing.T) {
	db := movementTestDB(t)
	repo := NewMovementRepository(db)

	orderID := uint(7)
	if err := repo.Append(db, &stockEntity.StockMovement{SkuID: 1, Type: stockEntity.MovementOut, Grams: 50, OrderID: &orderID}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := repo.Append(db, &stockEntity.StockMovement{SkuID: 2, Type: stockEntity.MovementIn, Grams: 50, OrderID: &orderID}); err != nil {
		t.Fatalf("append: %v", err)
	}

	n, err := repo.CountByOrderAndType(orderID, stockEntity.MovementOut)
	if err != nil {
		t.Fatalf("CountByOrderAndType: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

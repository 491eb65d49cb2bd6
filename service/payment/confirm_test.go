package payment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	salesEntity "weftshop.GO/model/entity/sales"
	stockEntity "weftshop.GO/model/entity/stock"
	salesRepo "weftshop.GO/model/repository/sales"
	stockRepo "weftshop.GO/model/repository/stock"
)

func paymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Temp file + WAL so concurrent goroutines can share the database.
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("payment_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(
		&catalogEntity.Sku{},
		&stockEntity.StockMovement{},
		&salesEntity.Order{},
		&salesEntity.OrderItem{},
		&salesEntity.OrderComment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedPaidScenario creates a SKU and a pending unpaid order around it.
func seedOrder(t *testing.T, db *gorm.DB, sku *catalogEntity.Sku, grams int) *salesEntity.Order {
	t.Helper()
	if err := db.Create(sku).Error; err != nil {
		t.Fatalf("seed sku: %v", err)
	}
	order := &salesEntity.Order{
		OrderStatus:   salesEntity.OrderPending,
		PaymentStatus: salesEntity.PaymentUnpaid,
		Items: []salesEntity.OrderItem{{
			SkuID:    sku.SkuID,
			SKU:      sku.SKU,
			SaleMode: string(sku.SaleMode),
			Grams:    grams,
		}},
	}
	if err := salesRepo.NewOrderRepository(db).Create(order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestConfirm_PieceMarksSoldAndWritesLedger(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "PIECE-1", SaleMode: catalogEntity.SaleModePiece,
		WeightTotalG: 50, IsInStock: true,
	}
	order := seedOrder(t, db, sku, 50)
	svc := NewService(db, nil)

	res, err := svc.Confirm(Confirmation{
		OrderID: order.IncrementID, State: GatewayStatePaid, PaymentRef: "tx-100",
	}, []byte(`{"state":"PAID"}`))
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !res.Applied {
		t.Fatal("not applied")
	}

	var fresh catalogEntity.Sku
	db.First(&fresh, sku.SkuID)
	if !fresh.SoldOut || fresh.IsInStock {
		t.Errorf("sku = soldOut:%v inStock:%v, want sold", fresh.SoldOut, fresh.IsInStock)
	}

	got, _ := salesRepo.NewOrderRepository(db).FindByIncrementID(order.IncrementID)
	if got.PaymentStatus != salesEntity.PaymentPaid || got.OrderStatus != salesEntity.OrderPaid {
		t.Errorf("status = %s/%s, want paid/paid", got.OrderStatus, got.PaymentStatus)
	}
	if got.PaidAt == nil {
		t.Error("PaidAt not set")
	}
	if got.PaymentRef != "tx-100" {
		t.Errorf("PaymentRef = %q", got.PaymentRef)
	}

	movements := stockRepo.NewMovementRepository(db)
	rows, _ := movements.ListByOrder(got.OrderID)
	if len(rows) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(rows))
	}
	if rows[0].Type != stockEntity.MovementOut || rows[0].Grams != 50 || !rows[0].SoldPiece {
		t.Errorf("ledger row = %+v, want OUT 50g soldPiece", rows[0])
	}
}

func TestConfirm_BulkDeductsGrams(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "BULK-1", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, MinOrderGrams: 50, StepGrams: 10, IsInStock: true,
	}
	order := seedOrder(t, db, sku, 80)
	svc := NewService(db, nil)

	if _, err := svc.Confirm(Confirmation{OrderID: order.IncrementID, State: GatewayStatePaid}, nil); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	var fresh catalogEntity.Sku
	db.First(&fresh, sku.SkuID)
	if fresh.AvailableGrams != 120 {
		t.Errorf("available = %d, want 120", fresh.AvailableGrams)
	}
	if !fresh.IsInStock {
		t.Error("still has stock, should stay in stock")
	}
}

func TestConfirm_BulkFloorsAtZero(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "BULK-RACE", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 60, IsInStock: true,
	}
	// Another order won the race: only 60g left but this order carries 80g.
	order := seedOrder(t, db, sku, 80)
	svc := NewService(db, nil)

	if _, err := svc.Confirm(Confirmation{OrderID: order.IncrementID, State: GatewayStatePaid}, nil); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	var fresh catalogEntity.Sku
	db.First(&fresh, sku.SkuID)
	if fresh.AvailableGrams != 0 {
		t.Errorf("available = %d, want floored 0", fresh.AvailableGrams)
	}
	if fresh.IsInStock {
		t.Error("should be out of stock")
	}
	// The ledger keeps the true figure for reconciliation.
	sum, _ := stockRepo.NewMovementRepository(db).SignedSum(sku.SkuID)
	if sum != -80 {
		t.Errorf("ledger sum = %d, want -80", sum)
	}
}

func TestConfirm_DuplicateDeliveryIsNoOp(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "BULK-2", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, IsInStock: true,
	}
	order := seedOrder(t, db, sku, 80)
	svc := NewService(db, nil)

	conf := Confirmation{OrderID: order.IncrementID, State: GatewayStatePaid, PaymentRef: "tx-dup"}
	if _, err := svc.Confirm(conf, nil); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	res, err := svc.Confirm(conf, nil)
	if err != nil {
		t.Fatalf("second Confirm: %v", err)
	}
	if !res.AlreadyPaid || res.Applied {
		t.Errorf("result = %+v, want AlreadyPaid no-op", res)
	}

	var fresh catalogEntity.Sku
	db.First(&fresh, sku.SkuID)
	if fresh.AvailableGrams != 120 {
		t.Errorf("available = %d, want 120 (deducted exactly once)", fresh.AvailableGrams)
	}
	n, _ := stockRepo.NewMovementRepository(db).CountByOrderAndType(res.Order.OrderID, stockEntity.MovementOut)
	if n != 1 {
		t.Errorf("OUT rows = %d, want exactly 1", n)
	}
}

func TestConfirm_ConcurrentDeliveriesDeductOnce(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "BULK-CONC", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, IsInStock: true,
	}
	order := seedOrder(t, db, sku, 80)
	svc := NewService(db, nil)

	const deliveries = 8
	var wg sync.WaitGroup
	errs := make(chan error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Confirm(Confirmation{OrderID: order.IncrementID, State: GatewayStatePaid}, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Confirm: %v", err)
		}
	}

	var fresh catalogEntity.Sku
	db.First(&fresh, sku.SkuID)
	if fresh.AvailableGrams != 120 {
		t.Errorf("available = %d, want 120 after %d concurrent deliveries", fresh.AvailableGrams, deliveries)
	}
	got, _ := salesRepo.NewOrderRepository(db).FindByIncrementID(order.IncrementID)
	n, _ := stockRepo.NewMovementRepository(db).CountByOrderAndType(got.OrderID, stockEntity.MovementOut)
	if n != 1 {
		t.Errorf("OUT rows = %d, want exactly 1", n)
	}
}

func TestConfirm_NonPaidStateIgnored(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "BULK-3", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, IsInStock: true,
	}
	order := seedOrder(t, db, sku, 80)
	svc := NewService(db, nil)

	for _, state := range []string{"PENDING", "EXPIRED", "FAILED", ""} {
		res, err := svc.Confirm(Confirmation{OrderID: order.IncrementID, State: state}, nil)
		if err != nil {
			t.Fatalf("Confirm(%q): %v", state, err)
		}
		if !res.Ignored {
			t.Errorf("Confirm(%q): not ignored", state)
		}
	}

	var fresh catalogEntity.Sku
	db.First(&fresh, sku.SkuID)
	if fresh.AvailableGrams != 200 {
		t.Errorf("available = %d, want untouched 200", fresh.AvailableGrams)
	}
}

func TestConfirm_UnknownOrder(t *testing.T) {
	db := paymentTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.Confirm(Confirmation{OrderID: "100000099", State: GatewayStatePaid}, nil)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestConfirm_CancelledOrderRejected(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "BULK-4", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, IsInStock: true,
	}
	order := seedOrder(t, db, sku, 80)
	db.Model(&salesEntity.Order{}).Where("order_id = ?", order.OrderID).
		Update("order_status", salesEntity.OrderCancelled)
	svc := NewService(db, nil)

	_, err := svc.Confirm(Confirmation{OrderID: order.IncrementID, State: GatewayStatePaid}, nil)
	if !errors.Is(err, ErrIllegalState) {
		t.Errorf("err = %v, want ErrIllegalState", err)
	}
}

func TestConfirm_WritesAuditComment(t *testing.T) {
	db := paymentTestDB(t)
	sku := &catalogEntity.Sku{
		SKU: "BULK-5", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, IsInStock: true,
	}
	order := seedOrder(t, db, sku, 80)
	svc := NewService(db, nil)

	res, err := svc.Confirm(Confirmation{OrderID: order.IncrementID, State: GatewayStatePaid, PaymentRef: "tx-7"}, nil)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	cs, _ := salesRepo.NewOrderRepository(db).Comments(res.Order.OrderID)
	if len(cs) != 1 {
		t.Fatalf("comments = %d, want 1", len(cs))
	}
	if cs[0].Comment != "payment captured (ref tx-7)" {
		t.Errorf("comment = %q", cs[0].Comment)
	}
}

package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	salesEntity "weftshop.GO/model/entity/sales"
	stockEntity "weftshop.GO/model/entity/stock"
	salesRepo "weftshop.GO/model/repository/sales"
	paymentService "weftshop.GO/service/payment"
)

const testSecret = "whsec_test"

func webhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("webhook_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
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

func webhookTestServer(t *testing.T, db *gorm.DB) *echo.Echo {
	t.Helper()
	t.Setenv("PAYMENT_WEBHOOK_SECRET", testSecret)
	e := echo.New()
	RegisterWebhookRoutes(e, db)
	return e
}

func seedWebhookOrder(t *testing.T, db *gorm.DB) *salesEntity.Order {
	t.Helper()
	sku := &catalogEntity.Sku{
		SKU: "BULK-WH", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, IsInStock: true,
	}
	if err := db.Create(sku).Error; err != nil {
		t.Fatalf("seed sku: %v", err)
	}
	order := &salesEntity.Order{
		OrderStatus:   salesEntity.OrderPending,
		PaymentStatus: salesEntity.PaymentUnpaid,
		Items: []salesEntity.OrderItem{{
			SkuID: sku.SkuID, SKU: sku.SKU, SaleMode: string(sku.SaleMode), Grams: 80,
		}},
	}
	if err := salesRepo.NewOrderRepository(db).Create(order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func postCallback(e *echo.Echo, body []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payment/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("X-Payment-Sig", sig)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_MissingSignature_Returns401(t *testing.T) {
	db := webhookTestDB(t)
	e := webhookTestServer(t, db)

	body := []byte(`{"order_id":"100000001","state":"PAID"}`)
	rec := postCallback(e, body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhook_WrongSignature_Returns401(t *testing.T) {
	db := webhookTestDB(t)
	e := webhookTestServer(t, db)

	body := []byte(`{"order_id":"100000001","state":"PAID"}`)
	rec := postCallback(e, body, paymentService.Sign(body, "wrong-secret"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhook_TamperedBody_Returns401(t *testing.T) {
	db := webhookTestDB(t)
	e := webhookTestServer(t, db)

	signed := []byte(`{"order_id":"100000001","state":"PAID"}`)
	tampered := []byte(`{"order_id":"100000002","state":"PAID"}`)
	rec := postCallback(e, tampered, paymentService.Sign(signed, testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhook_ValidPaidFlow(t *testing.T) {
	db := webhookTestDB(t)
	order := seedWebhookOrder(t, db)
	e := webhookTestServer(t, db)

	body := []byte(fmt.Sprintf(`{"order_id":"%s","state":"PAID","payment_ref":"tx-wh-1"}`, order.IncrementID))
	rec := postCallback(e, body, paymentService.Sign(body, testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s, want 200", rec.Code, rec.Body.String())
	}

	got, err := salesRepo.NewOrderRepository(db).FindByIncrementID(order.IncrementID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.PaymentStatus != salesEntity.PaymentPaid {
		t.Errorf("payment status = %s, want paid", got.PaymentStatus)
	}
	if string(got.PaymentPayload) == "" {
		t.Error("raw payload not stored on the order")
	}

	var sku catalogEntity.Sku
	db.Where("sku = ?", "BULK-WH").First(&sku)
	if sku.AvailableGrams != 120 {
		t.Errorf("available = %d, want 120", sku.AvailableGrams)
	}
}

func TestWebhook_DuplicateDelivery_AcknowledgedOnce(t *testing.T) {
	db := webhookTestDB(t)
	order := seedWebhookOrder(t, db)
	e := webhookTestServer(t, db)

	body := []byte(fmt.Sprintf(`{"order_id":"%s","state":"PAID"}`, order.IncrementID))
	sig := paymentService.Sign(body, testSecret)

	if rec := postCallback(e, body, sig); rec.Code != http.StatusOK {
		t.Fatalf("first delivery status = %d", rec.Code)
	}
	rec := postCallback(e, body, sig)
	if rec.Code != http.StatusOK {
		t.Fatalf("second delivery status = %d", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["already_processed"] != true {
		t.Errorf("response = %v, want already_processed", resp)
	}

	var sku catalogEntity.Sku
	db.Where("sku = ?", "BULK-WH").First(&sku)
	if sku.AvailableGrams != 120 {
		t.Errorf("available = %d, want 120 (single deduction)", sku.AvailableGrams)
	}
}

func TestWebhook_NonPaidState_Acknowledged(t *testing.T) {
	db := webhookTestDB(t)
	order := seedWebhookOrder(t, db)
	e := webhookTestServer(t, db)

	body := []byte(fmt.Sprintf(`{"order_id":"%s","state":"EXPIRED"}`, order.IncrementID))
	rec := postCallback(e, body, paymentService.Sign(body, testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 ack", rec.Code)
	}

	var sku catalogEntity.Sku
	db.Where("sku = ?", "BULK-WH").First(&sku)
	if sku.AvailableGrams != 200 {
		t.Errorf("available = %d, want untouched 200", sku.AvailableGrams)
	}
}

func TestWebhook_UnknownOrder_AckedSoGatewayStops(t *testing.T) {
	db := webhookTestDB(t)
	e := webhookTestServer(t, db)

	body := []byte(`{"order_id":"100000099","state":"PAID"}`)
	rec := postCallback(e, body, paymentService.Sign(body, testSecret))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestWebhook_MalformedAuthenticBody_Acked(t *testing.T) {
	db := webhookTestDB(t)
	e := webhookTestServer(t, db)

	body := []byte(`this is not json`)
	rec := postCallback(e, body, paymentService.Sign(body, testSecret))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 ack for unparseable payload", rec.Code)
	}
}

func TestWebhook_WeaklyTypedFields(t *testing.T) {
	db := webhookTestDB(t)
	order := seedWebhookOrder(t, db)
	e := webhookTestServer(t, db)

	// Some gateways send order_id as a number; the decoder must tolerate it.
	body := []byte(fmt.Sprintf(`{"order_id":%s,"state":"PAID"}`, order.IncrementID))
	rec := postCallback(e, body, paymentService.Sign(body, testSecret))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got, _ := salesRepo.NewOrderRepository(db).FindByIncrementID(order.IncrementID)
	if got.PaymentStatus != salesEntity.PaymentPaid {
		t.Errorf("payment status = %s, want paid (numeric order_id decoded)", got.PaymentStatus)
	}
}

func TestCapture_ManualAfterWebhookIsNoOp(t *testing.T) {
	db := webhookTestDB(t)
	order := seedWebhookOrder(t, db)
	e := webhookTestServer(t, db)
	RegisterCaptureRoutes(e.Group("/api"), db)

	body := []byte(fmt.Sprintf(`{"order_id":"%s","state":"PAID"}`, order.IncrementID))
	if rec := postCallback(e, body, paymentService.Sign(body, testSecret)); rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/orders/"+order.IncrementID+"/capture", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("capture status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["already_processed"] != true {
		t.Errorf("response = %v, want already_processed no-op", resp)
	}

	var sku catalogEntity.Sku
	db.Where("sku = ?", "BULK-WH").First(&sku)
	if sku.AvailableGrams != 120 {
		t.Errorf("available = %d, want 120 (no double deduction)", sku.AvailableGrams)
	}
}

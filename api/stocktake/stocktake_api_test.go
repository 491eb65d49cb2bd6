package stocktake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	catalogEntity "weftshop.GO/model/entity/catalog"
	stockEntity "weftshop.GO/model/entity/stock"
)

func stocktakeTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&catalogEntity.Sku{},
		&stockEntity.StockMovement{},
		&stockEntity.StockTake{},
		&stockEntity.StockTakeItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&catalogEntity.Sku{
		SKU: "BULK-API", SaleMode: catalogEntity.SaleModeBulk,
		AvailableGrams: 200, IsInStock: true,
	}).Error; err != nil {
		t.Fatalf("seed sku: %v", err)
	}
	return db
}

func stocktakeTestServer(t *testing.T, db *gorm.DB) *echo.Echo {
	t.Helper()
	e := echo.New()
	RegisterStockTakeRoutes(e.Group("/api"), db)
	return e
}

func do(e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStockTakeAPI_FullFlow(t *testing.T) {
	db := stocktakeTestDB(t)
	e := stocktakeTestServer(t, db)

	// Open a session.
	rec := do(e, http.MethodPost, "/api/stocktakes", map[string]string{"code": "ST-API-1", "note": "warehouse A"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	var created stockEntity.StockTake
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.Status != stockEntity.StockTakePlanned {
		t.Fatalf("status = %s, want PLANNED", created.Status)
	}
	base := fmt.Sprintf("/api/stocktakes/%d", created.StockTakeID)

	// Record counts: expected 200, counted 185.
	rec = do(e, http.MethodPost, base+"/items", map[string]interface{}{
		"items": []map[string]interface{}{
			{"sku": "BULK-API", "expected_grams": 200, "counted_grams": 185},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("items status = %d body=%s", rec.Code, rec.Body.String())
	}

	// Complete: variance applied.
	rec = do(e, http.MethodPost, base+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d body=%s", rec.Code, rec.Body.String())
	}

	// Detail shows total variance.
	rec = do(e, http.MethodGet, base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var detail struct {
		TotalVarianceGrams int `json:"total_variance_grams"`
	}
	json.Unmarshal(rec.Body.Bytes(), &detail)
	if detail.TotalVarianceGrams != -15 {
		t.Errorf("total variance = %d, want -15", detail.TotalVarianceGrams)
	}

	var sku catalogEntity.Sku
	db.Where("sku = ?", "BULK-API").First(&sku)
	if sku.AvailableGrams != 185 {
		t.Errorf("available = %d, want 185", sku.AvailableGrams)
	}

	// Second complete is a conflict, not a second application.
	rec = do(e, http.MethodPost, base+"/complete", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("double complete status = %d, want 409", rec.Code)
	}

	// A completed session cannot be deleted.
	rec = do(e, http.MethodDelete, base, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete completed status = %d, want 409", rec.Code)
	}
}

func TestStockTakeAPI_Validation(t *testing.T) {
	db := stocktakeTestDB(t)
	e := stocktakeTestServer(t, db)

	if rec := do(e, http.MethodPost, "/api/stocktakes", map[string]string{"note": "no code"}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing code status = %d, want 400", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/stocktakes/9999", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/stocktakes/abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

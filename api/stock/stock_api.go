package stock

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"weftshop.GO/api"
	"weftshop.GO/config"
	catalogRepo "weftshop.GO/model/repository/catalog"
	stockRepo "weftshop.GO/model/repository/stock"
	pricingService "weftshop.GO/service/pricing"
	stockService "weftshop.GO/service/stock"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

// AvailabilityResponse is the combined price+stock snapshot for one SKU.
type AvailabilityResponse struct {
	SKU            string  `json:"sku"`
	SaleMode       string  `json:"sale_mode"`
	InStock        bool    `json:"in_stock"`
	AvailableGrams int     `json:"available_grams"`
	LedgerGrams    int     `json:"ledger_grams"`
	PricePerGram   float64 `json:"price_per_gram"`
	PriceSource    string  `json:"price_source"`
}

const availabilityCacheTTL = 30 * time.Second

func RegisterStockRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/stock")
	skus := catalogRepo.NewSkuRepository(db)
	movements := stockRepo.NewMovementRepository(db)
	intake := stockService.NewService(db)
	resolver := pricingService.NewService(db)

	// POST /api/stock/intake – book received goods as IN ledger rows
	g.POST("/intake", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			Items []stockService.IntakeItemInput `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Items) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items array is required and must not be empty"})
		}

		res, err := intake.Intake(body.Items)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, res)
	})

	// GET /api/stock/movements?sku=XXX&limit=50 – ledger history for a SKU
	g.GET("/movements", func(c echo.Context) error {
		skuCode := c.QueryParam("sku")
		if skuCode == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku required"})
		}
		limit, _ := strconv.Atoi(c.QueryParam("limit"))

		sku, err := skus.FindBySKU(skuCode)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrSkuNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "sku not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
		}

		rows, err := movements.ListBySKU(sku.SkuID, limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"sku": sku.SKU, "movements": rows, "count": len(rows)})
	})

	// GET /api/stock/availability?sku=XXX – price + availability in one shot
	g.GET("/availability", func(c echo.Context) error {
		start := time.Now()

		skuCode := c.QueryParam("sku")
		if skuCode == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "sku required"})
		}

		// Redis read-through when configured
		cacheKey := "availability:" + skuCode
		if config.RedisClient != nil {
			if cached, err := config.RedisClient.Get(config.RedisCtx(), cacheKey).Bytes(); err == nil {
				var resp AvailabilityResponse
				if json.Unmarshal(cached, &resp) == nil {
					c.Response().Header().Set("X-Cache", "hit")
					return c.JSON(http.StatusOK, resp)
				}
			}
		}

		sku, err := skus.FindBySKU(skuCode)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrSkuNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "sku not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
		}

		var (
			price     float64
			source    pricingService.PriceSource
			priceOK   bool
			ledgerSum int
		)
		eg := new(errgroup.Group)
		eg.Go(func() error {
			price, source, priceOK = resolver.ResolveForSku(sku)
			return nil
		})
		eg.Go(func() error {
			var err error
			ledgerSum, err = movements.SignedSum(sku.SkuID)
			return err
		})
		if err := eg.Wait(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		resp := AvailabilityResponse{
			SKU:            sku.SKU,
			SaleMode:       string(sku.SaleMode),
			InStock:        sku.Sellable(),
			AvailableGrams: sku.AvailableGrams,
			LedgerGrams:    ledgerSum,
			PricePerGram:   price,
			PriceSource:    string(source),
		}
		if !priceOK {
			resp.PriceSource = "none"
		}

		if config.RedisClient != nil {
			if b, err := json.Marshal(resp); err == nil {
				config.RedisClient.Set(config.RedisCtx(), cacheKey, b, availabilityCacheTTL)
			}
		}

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, resp)
	})
}

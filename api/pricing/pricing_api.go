package pricing

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"weftshop.GO/api"
	pricingEntity "weftshop.GO/model/entity/pricing"
	pricingRepo "weftshop.GO/model/repository/pricing"
	pricingService "weftshop.GO/service/pricing"
)

func init() {
	api.RegisterModule(RegisterPricingRoutes)
}

// MatrixEntryInput is the JSON input for the bulk matrix upsert.
type MatrixEntryInput struct {
	Category     string  `json:"category"`
	Tier         string  `json:"tier"`
	ShadeStart   uint16  `json:"shade_start"`
	ShadeEnd     uint16  `json:"shade_end"`
	LengthCm     uint16  `json:"length_cm"`
	PricePerGram float64 `json:"price_per_gram"`
}

func RegisterPricingRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/pricing")
	repo := pricingRepo.NewPriceMatrixRepository(db)
	resolver := pricingService.NewService(db)

	// POST /api/pricing/matrix/import – bulk upsert on the exact tuple
	g.POST("/matrix/import", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			Entries   []MatrixEntryInput `json:"entries"`
			BatchSize int                `json:"batch_size"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Entries) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "entries array is required and must not be empty"})
		}

		entries := make([]pricingEntity.PriceMatrixEntry, 0, len(body.Entries))
		var warnings []string
		for _, in := range body.Entries {
			if in.Category == "" || in.Tier == "" || in.LengthCm == 0 {
				warnings = append(warnings, "entry missing category/tier/length, skipping")
				continue
			}
			if in.ShadeEnd < in.ShadeStart {
				warnings = append(warnings, "entry has shade_end < shade_start, skipping")
				continue
			}
			if in.PricePerGram <= 0 {
				warnings = append(warnings, "entry has non-positive price, skipping")
				continue
			}
			entries = append(entries, pricingEntity.PriceMatrixEntry{
				Category:     in.Category,
				Tier:         in.Tier,
				ShadeStart:   in.ShadeStart,
				ShadeEnd:     in.ShadeEnd,
				LengthCm:     in.LengthCm,
				PricePerGram: in.PricePerGram,
			})
		}

		written, err := repo.BulkUpsert(entries, body.BatchSize)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}
		resolver.Invalidate()

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"imported":            written,
			"skipped":             len(body.Entries) - written,
			"warnings":            warnings,
			"request_duration_ms": duration,
		})
	})

	// GET /api/pricing/matrix?category=&tier=&shade=&length_cm=
	g.GET("/matrix", func(c echo.Context) error {
		f := pricingRepo.Filter{
			Category: c.QueryParam("category"),
			Tier:     c.QueryParam("tier"),
		}
		if v := c.QueryParam("shade"); v != "" {
			if n, err := strconv.ParseUint(v, 10, 16); err == nil {
				f.Shade = uint16(n)
			}
		}
		if v := c.QueryParam("length_cm"); v != "" {
			if n, err := strconv.ParseUint(v, 10, 16); err == nil {
				f.LengthCm = uint16(n)
			}
		}

		entries, err := repo.List(f)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"entries": entries, "count": len(entries)})
	})

	// GET /api/pricing/resolve?category=&tier=&length_cm=&shade= – admin preview;
	// absence is informational, not an error state
	g.GET("/resolve", func(c echo.Context) error {
		category := c.QueryParam("category")
		tier := c.QueryParam("tier")
		length, _ := strconv.ParseUint(c.QueryParam("length_cm"), 10, 16)
		shade, _ := strconv.ParseUint(c.QueryParam("shade"), 10, 16)
		if category == "" || tier == "" || length == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "category, tier and length_cm are required"})
		}

		price, ok := resolver.ResolveMatrix(category, tier, uint16(length), uint16(shade))
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no matrix entry", "fallback": "sku price applies"})
		}
		return c.JSON(http.StatusOK, echo.Map{"price_per_gram": price, "source": pricingService.SourceMatrix})
	})
}

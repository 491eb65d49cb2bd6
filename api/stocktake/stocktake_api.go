package stocktake

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"weftshop.GO/api"
	stockEntity "weftshop.GO/model/entity/stock"
	stocktakeService "weftshop.GO/service/stocktake"
)

func init() {
	api.RegisterModule(RegisterStockTakeRoutes)
}

func RegisterStockTakeRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/stocktakes")
	svc := stocktakeService.NewService(db)

	// POST /api/stocktakes – open a PLANNED session
	g.POST("", func(c echo.Context) error {
		var body struct {
			Code string `json:"code"`
			Note string `json:"note"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Code == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
		}
		st, err := svc.Create(body.Code, body.Note)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, st)
	})

	// GET /api/stocktakes – recent sessions
	g.GET("", func(c echo.Context) error {
		limit, _ := strconv.Atoi(c.QueryParam("limit"))
		takes, err := svc.List(limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"stock_takes": takes, "count": len(takes)})
	})

	// GET /api/stocktakes/:id – session detail with per-item variance
	g.GET("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		st, err := svc.Get(id)
		if err != nil {
			return stockTakeError(c, err)
		}
		var totalVariance int
		for _, it := range st.Items {
			totalVariance += it.DifferenceGrams
		}
		return c.JSON(http.StatusOK, echo.Map{"stock_take": st, "total_variance_grams": totalVariance})
	})

	// POST /api/stocktakes/:id/items – recordCounts; repeatable before completion
	g.POST("/:id/items", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var body struct {
			Items []stocktakeService.CountInput `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.Items) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "items array is required and must not be empty"})
		}
		st, err := svc.RecordCounts(id, body.Items)
		if err != nil {
			return stockTakeError(c, err)
		}
		return c.JSON(http.StatusOK, st)
	})

	// POST /api/stocktakes/:id/status – explicit status transition
	g.POST("/:id/status", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		var body struct {
			Status stockEntity.StockTakeStatus `json:"status"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		st, err := svc.Transition(id, body.Status)
		if err != nil {
			return stockTakeError(c, err)
		}
		return c.JSON(http.StatusOK, st)
	})

	// POST /api/stocktakes/:id/complete – apply variances to the ledger
	g.POST("/:id/complete", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		st, err := svc.Complete(id)
		if err != nil {
			return stockTakeError(c, err)
		}
		return c.JSON(http.StatusOK, st)
	})

	// DELETE /api/stocktakes/:id – completed sessions are immutable
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := parseID(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		if err := svc.Delete(id); err != nil {
			return stockTakeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

func stockTakeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, stocktakeService.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "stock take not found"})
	case errors.Is(err, stocktakeService.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}

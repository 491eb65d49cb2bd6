package checkout

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"weftshop.GO/api"
	quoteService "weftshop.GO/service/quote"
)

func init() {
	api.RegisterModule(RegisterCheckoutRoutes)
}

func RegisterCheckoutRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/checkout")
	svc := quoteService.NewService(db)

	// POST /api/checkout/quote – priced cart preview, no reservation
	g.POST("/quote", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			Lines []quoteService.LineInput `json:"lines"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		q, err := svc.Quote(body.Lines)
		if err != nil {
			return quoteError(c, err)
		}

		duration := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, q)
	})

	// POST /api/checkout/orders – persist a quote as a pending unpaid order
	g.POST("/orders", func(c echo.Context) error {
		var body quoteService.OrderInput
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.CustomerEmail == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_email is required"})
		}

		order, err := svc.PlaceOrder(body)
		if err != nil {
			return quoteError(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"increment_id":   order.IncrementID,
			"order_status":   order.OrderStatus,
			"payment_status": order.PaymentStatus,
			"grand_total":    order.GrandTotal,
		})
	})
}

// quoteError maps the quoting taxonomy to HTTP codes. The wrapped messages are
// user-presentable ("only 40g remaining"); internal errors stay generic.
func quoteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, quoteService.ErrSkuNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, quoteService.ErrNotAvailable),
		errors.Is(err, quoteService.ErrInsufficientStock):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, quoteService.ErrInvalidQuantity):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, quoteService.ErrPriceUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

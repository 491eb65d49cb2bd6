package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"

	"weftshop.GO/api"
	"weftshop.GO/config"
	salesRepo "weftshop.GO/model/repository/sales"
	"weftshop.GO/service/notification"
	paymentService "weftshop.GO/service/payment"
)

func init() {
	api.RegisterRoute(RegisterWebhookRoutes)
	api.RegisterModule(RegisterCaptureRoutes)
}

func webhookSecret() string {
	return config.GetEnv("PAYMENT_WEBHOOK_SECRET", "")
}

// RegisterWebhookRoutes mounts the public gateway callback. It carries its own
// shared-secret signature check instead of the /api auth middleware.
func RegisterWebhookRoutes(e *echo.Echo, db *gorm.DB) {
	svc := paymentService.NewService(db, notification.NewLogNotifier())

	// POST /payment/callback – at-least-once delivered gateway notification
	e.POST("/payment/callback", func(c echo.Context) error {
		raw, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
		}

		// Signature over the raw payload, checked before any processing.
		sig := c.Request().Header.Get("X-Payment-Sig")
		if !paymentService.VerifySignature(raw, sig, webhookSecret()) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}

		conf, err := decodeConfirmation(raw)
		if err != nil {
			// Malformed but authentic: acknowledge so the gateway stops
			// redelivering something we can never parse.
			return c.JSON(http.StatusOK, echo.Map{"status": "ignored", "error": "malformed payload"})
		}

		res, err := svc.Confirm(*conf, raw)
		if err != nil {
			if errors.Is(err, paymentService.ErrOrderNotFound) {
				return c.JSON(http.StatusOK, echo.Map{"status": "ignored", "error": "unknown order"})
			}
			// Transaction failure: do NOT acknowledge; the gateway's
			// redelivery plus our idempotency guard is the retry mechanism.
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
		}

		switch {
		case res.Ignored:
			return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
		case res.AlreadyPaid:
			return c.JSON(http.StatusOK, echo.Map{"status": "ok", "already_processed": true})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":         "ok",
			"order_status":   res.Order.OrderStatus,
			"payment_status": res.Order.PaymentStatus,
		})
	})
}

// decodeConfirmation tolerates gateways that send numbers as strings and vice
// versa by decoding through a weakly typed map.
func decodeConfirmation(raw []byte) (*paymentService.Confirmation, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	var conf paymentService.Confirmation
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &conf,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}
	if conf.OrderID == "" {
		return nil, errors.New("order_id missing")
	}
	return &conf, nil
}

// RegisterCaptureRoutes mounts the admin capture endpoint on the
// authenticated /api group. It drives the same idempotent mutator as the
// webhook; capturing after the webhook already fired is a safe no-op.
func RegisterCaptureRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := paymentService.NewService(db, notification.NewLogNotifier())
	orders := salesRepo.NewOrderRepository(db)

	// POST /api/orders/:incrementId/capture
	apiGroup.POST("/orders/:incrementId/capture", func(c echo.Context) error {
		incrementID := c.Param("incrementId")

		res, err := svc.Confirm(paymentService.Confirmation{
			OrderID:    incrementID,
			State:      paymentService.GatewayStatePaid,
			PaymentRef: "manual-capture",
		}, nil)
		if err != nil {
			if errors.Is(err, paymentService.ErrOrderNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
			}
			if errors.Is(err, paymentService.ErrIllegalState) {
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "capture failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"increment_id":      res.Order.IncrementID,
			"order_status":      res.Order.OrderStatus,
			"payment_status":    res.Order.PaymentStatus,
			"already_processed": res.AlreadyPaid,
		})
	})

	// GET /api/orders/:incrementId – order detail with audit trail
	apiGroup.GET("/orders/:incrementId", func(c echo.Context) error {
		order, err := orders.FindByIncrementID(c.Param("incrementId"))
		if err != nil {
			if errors.Is(err, salesRepo.ErrOrderNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
		}
		comments, _ := orders.Comments(order.OrderID)
		return c.JSON(http.StatusOK, echo.Map{"order": order, "comments": comments})
	})
}

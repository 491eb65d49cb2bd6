package maintenance

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"weftshop.GO/api"
	"weftshop.GO/config"
	cancellationService "weftshop.GO/service/cancellation"
	stockService "weftshop.GO/service/stock"
)

func init() {
	api.RegisterRoute(RegisterMaintenanceRoutes)
}

// bearerOK checks the CRON_SECRET bearer credential that keeps the public
// trigger endpoints from being invoked by strangers. Fails closed when unset.
func bearerOK(c echo.Context) bool {
	secret := config.GetEnv("CRON_SECRET", "")
	if secret == "" {
		return false
	}
	auth := c.Request().Header.Get("Authorization")
	return strings.TrimPrefix(auth, "Bearer ") == secret
}

// RegisterMaintenanceRoutes mounts the scheduler-facing trigger endpoints on
// the root instance; external cron services call these instead of the CLI.
func RegisterMaintenanceRoutes(e *echo.Echo, db *gorm.DB) {
	sweeper := cancellationService.NewService(db, nil)
	stock := stockService.NewService(db)

	// POST /cron/orders/sweep
	e.POST("/cron/orders/sweep", func(c echo.Context) error {
		if !bearerOK(c) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credential"})
		}
		config.LoadAppConfig()
		res, err := sweeper.Sweep(time.Now(), config.AppConfig.OrderRetention)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		errs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			errs = append(errs, e.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{
			"cancelled": res.Cancelled,
			"errors":    errs,
		})
	})

	// POST /cron/stock/rebuild?dry_run=1
	e.POST("/cron/stock/rebuild", func(c echo.Context) error {
		if !bearerOK(c) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credential"})
		}
		dryRun := c.QueryParam("dry_run") == "1"
		res, err := stock.Rebuild(dryRun)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, res)
	})
}

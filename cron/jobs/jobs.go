package jobs

import (
	"log"
	"time"

	"weftshop.GO/config"
	cancellationService "weftshop.GO/service/cancellation"
	"weftshop.GO/service/notification"
	stockService "weftshop.GO/service/stock"
)

// OrderCancelJob sweeps unpaid orders past the retention window and cancels
// them, restocking their lines. Scheduled via config.CronJobs.
func OrderCancelJob(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("[cron] ordercancel: db unavailable: %v", err)
		return
	}
	config.LoadAppConfig()
	retention := config.AppConfig.OrderRetention

	svc := cancellationService.NewService(db, notification.NewLogNotifier())
	res, err := svc.Sweep(time.Now(), retention)
	if err != nil {
		log.Printf("[cron] ordercancel: sweep failed: %v", err)
		return
	}
	log.Printf("[cron] ordercancel: cancelled=%d errors=%d", len(res.Cancelled), len(res.Errors))
	for _, e := range res.Errors {
		log.Printf("[cron] ordercancel: order %s: %v", e.IncrementID, e.Err)
	}
}

// StockRebuildJob re-derives cached bulk availability from the movement
// ledger and reports drift. Pass "dry" as the first arg to only report.
func StockRebuildJob(args ...string) {
	db, err := config.NewDB()
	if err != nil {
		log.Printf("[cron] stockrebuild: db unavailable: %v", err)
		return
	}
	dryRun := len(args) > 0 && args[0] == "dry"

	res, err := stockService.NewService(db).Rebuild(dryRun)
	if err != nil {
		log.Printf("[cron] stockrebuild: %v", err)
		return
	}
	if len(res.Drifts) == 0 {
		log.Printf("[cron] stockrebuild: no drift (checked %d skus)", res.Checked)
		return
	}
	for _, d := range res.Drifts {
		log.Printf("[cron] stockrebuild: %s cached=%dg ledger=%dg (dry_run=%v)", d.SKU, d.Cached, d.LedgerSum, dryRun)
	}
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"weftshop.GO/config"
	cancellationService "weftshop.GO/service/cancellation"
	"weftshop.GO/service/notification"
)

var sweepRetention time.Duration

var sweepCmd = &cobra.Command{
	Use:   "orders:sweep",
	Short: "Cancel unpaid orders past the retention window and restock their lines",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		config.LoadAppConfig()
		retention := sweepRetention
		if retention <= 0 {
			retention = config.AppConfig.OrderRetention
		}

		svc := cancellationService.NewService(db, notification.NewLogNotifier())
		res, err := svc.Sweep(time.Now(), retention)
		if err != nil {
			fmt.Printf("Sweep failed: %v\n", err)
			return
		}

		fmt.Printf(`
=== Sweep Report ===
Retention:  %s
Cancelled:  %d
Errors:     %d
====================
`, retention, len(res.Cancelled), len(res.Errors))
		for _, id := range res.Cancelled {
			fmt.Printf("  cancelled %s\n", id)
		}
		for _, e := range res.Errors {
			fmt.Printf("  [warn] %s: %v\n", e.IncrementID, e.Err)
		}
	},
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepRetention, "retention", 0, "Override retention window (e.g. 168h); defaults to ORDER_RETENTION")
	rootCmd.AddCommand(sweepCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"weftshop.GO/config"
	stockService "weftshop.GO/service/stock"
)

var rebuildDryRun bool

var stockRebuildCmd = &cobra.Command{
	Use:   "stock:rebuild",
	Short: "Re-derive cached bulk availability from the stock movement ledger",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		res, err := stockService.NewService(db).Rebuild(rebuildDryRun)
		if err != nil {
			fmt.Printf("Rebuild failed: %v\n", err)
			return
		}

		mode := "rewrite"
		if rebuildDryRun {
			mode = "dry run"
		}
		fmt.Printf(`
=== Stock Rebuild Report ===
SKUs checked:  %d
Drifts found:  %d
Mode:          %s
============================
`, res.Checked, len(res.Drifts), mode)
		for _, d := range res.Drifts {
			fmt.Printf("  %s: cached=%dg ledger=%dg\n", d.SKU, d.Cached, d.LedgerSum)
		}
	},
}

func init() {
	stockRebuildCmd.Flags().BoolVar(&rebuildDryRun, "dry-run", false, "Report drift without rewriting cached availability")
	rootCmd.AddCommand(stockRebuildCmd)
}

package cmd

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weftshop",
	Short: "Weftshop inventory and order-fulfillment CLI",
	Run: func(cmd *cobra.Command, args []string) {
		banner()
		_ = cmd.Help()
	},
}

func banner() {
	fonts := []string{"banner", "big", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d"}
	fig := figure.NewFigure("Weftshop", fonts[rand.Intn(len(fonts))], true)
	fig.Print()
	fmt.Println()
}

// Execute runs the CLI. Custom commands registered via Register are attached first.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

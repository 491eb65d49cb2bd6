//go:build cli
// +build cli

package main

import (
	_ "weftshop.GO/custom"

	"weftshop.GO/cmd"
	"weftshop.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}

// billctl is a command-line companion for the billing engine. It runs
// the pure calculation paths (totals, period resolution, identifier
// formatting) without a server or database.
package main

import (
	"os"

	"github.com/warp/billing-engine/cmd/billctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

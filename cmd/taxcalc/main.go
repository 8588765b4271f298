// Command taxcalc is the CLI front end for the tax estimation engine.
package main

import (
	"os"

	"github.com/FelipeAlvarezM0/fiscalprovider/cmd/taxcalc/cmd"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
)

func main() {
	defer logging.Sync()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

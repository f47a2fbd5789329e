package main

import (
	"os"

	"github.com/fleetscope/fleet-app/fleet/fleetcli"
	"github.com/fleetscope/fleet-app/log"
)

func main() {
	app := fleetcli.GetApp()
	if err := app.Run(os.Args); err != nil {
		log.API.Fatal(err)
	}
}

package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/smartplay-booking/internal/cli"
)

func main() {
	cli.Execute()
}

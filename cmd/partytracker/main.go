package main

import (
	"os"

	"github.com/partytracker/partytracker/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/amirasaad/atm/internal/commands"
)

func main() {
	if err := commands.NewRootCommand(commands.FromConfig).Execute(); err != nil {
		os.Exit(1)
	}
}

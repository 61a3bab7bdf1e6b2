package main

import (
	"os"

	"github.com/rmera/godens/cmd/godens/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/simaudit-dev/simaudit/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

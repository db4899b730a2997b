package main

import (
	"os"

	"github.com/shuhna-net/flashledger/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

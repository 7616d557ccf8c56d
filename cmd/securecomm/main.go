package main

import (
	"os"

	"github.com/opd-ai/securecomm/cmd/securecomm/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

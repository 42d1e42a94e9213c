package main

import (
	"os"

	"raiap/cmd/raiap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

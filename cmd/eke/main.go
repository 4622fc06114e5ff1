package main

import (
	"os"

	"eke/cmd/eke/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

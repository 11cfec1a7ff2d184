package main

import (
	"os"

	"github.com/wonny/momentum/cmd/screener/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

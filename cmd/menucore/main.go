package main

import (
	"os"

	"github.com/mealworks/menucore/cmd/menucore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

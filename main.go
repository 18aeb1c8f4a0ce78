package main

import (
	"os"

	"github.com/benchdeck/benchdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/Adda-Baaj/wire-harvester/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

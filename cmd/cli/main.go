package main

import (
	"os"

	"github.com/gametu-dev/gametu/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

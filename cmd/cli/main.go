package main

import (
	"os"

	"github.com/marquee-dev/marquee/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/vibecharting/chartsafe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/travelmesh/a2a-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

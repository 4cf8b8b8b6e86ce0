package main

import (
	"os"

	"github.com/bnema/orca/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/ecofuelconnect/efc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

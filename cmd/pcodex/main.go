package main

import (
	"os"

	"github.com/pcodex/pcodex/cmd/pcodex/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}

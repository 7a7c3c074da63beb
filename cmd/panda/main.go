package main

import (
	"os"

	"github.com/pandalive/panda/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/YoshitsuguKoike/kaiwa/internal/interface/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

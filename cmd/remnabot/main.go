package main

import (
	"os"

	"github.com/DigneZzZ/remnabot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

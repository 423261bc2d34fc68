package main

import (
	"os"

	"github.com/tansive/conductor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

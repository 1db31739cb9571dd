package main

import (
	"os"

	"github.com/reoring/formskema/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

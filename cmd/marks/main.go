package main

import (
	"os"

	"github.com/noah-isme/sma-marks/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

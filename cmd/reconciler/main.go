package main

import (
	"os"

	"github.com/eshaffer321/receipt-reconciler/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Main(version))
}

package main

import (
	"os"

	"github.com/amirbrooks/tdr/internal/cli"
)

func main() {
	code := cli.Run(os.Args[1:])
	os.Exit(code)
}

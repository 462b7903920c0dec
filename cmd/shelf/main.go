package main

import (
	"os"

	"sanctum/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

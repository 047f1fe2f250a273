package main

import (
	"os"

	"github.com/alex-boop-chasey/vite-docs/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

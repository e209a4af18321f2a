package main

import (
	"fmt"
	"os"

	"hire-oracle/cmd/hire-oracle/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/knowgrid/knowgrid/internal/adapters/driving/cli"
)

func main() {
	// Optional .env for API keys; absence is not an error.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ora2mongo/internal/cli"
)

func main() {
	// load the .env file if it exists
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

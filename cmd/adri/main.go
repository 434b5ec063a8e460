package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"adri/internal/logging"
)

func main() {
	// .env is optional; environment wins over file values
	_ = godotenv.Load()
	logging.Setup()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

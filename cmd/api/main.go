package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/harishram/fintrack-backend/internal/cli"
	"github.com/harishram/fintrack-backend/internal/infrastructure/config"
)

func main() {
	// A missing .env file is fine, env vars may be set externally.
	_ = godotenv.Load()

	flags := cli.ParseServeFlags()
	cfg := config.LoadOrEnv()

	if err := cli.RunServe(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

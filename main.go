package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"trade-journal/internal/cli"
	"trade-journal/internal/config"
	"trade-journal/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd, shutdown := cli.NewRootCmd(cfg, logger)
	err = rootCmd.Execute()
	// Joins the pending snapshot persist before the process exits.
	shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

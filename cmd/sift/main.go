// Package main - консольная утилита для работы с результатами ранжирования без сервера.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/talent-sift/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Talent Sift candidate board tools",
	Long:  "sift filters and exports ranked resume results offline, and prepares proxy keys for the server.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		logger.Init(level)
		// stdout занят результатом
		logger.SetOutput(os.Stderr)
	},
	SilenceUsage: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

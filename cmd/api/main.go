package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextask/core/cmd/api/commands"
)

// @title NexTask API
// @version 1.0
// @description Personal task management service with per-user live task sync

// @contact.name NexTask Support
// @contact.url https://github.com/nextask/core

// @license.name MIT
// @license.url https://github.com/nextask/core/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "nextask",
		Short: "NexTask API Server",
		Long:  `NexTask is a personal task management service: email and password accounts, owner-scoped task lists and live snapshot streaming to every connected client.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

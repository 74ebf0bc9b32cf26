package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benvon/smart-connections/cmd/configure/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smart-connections-configure",
		Short: "Configuration tool for the Smart Connections API",
		Long:  "CLI tool for configuring OIDC providers, CORS and rate limits, and for inspecting user analytics",
	}

	rootCmd.AddCommand(commands.NewOIDCCmd())
	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewTestCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewInsightsCmd())
	rootCmd.AddCommand(commands.NewRemindersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

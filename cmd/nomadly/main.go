package main

import (
	"os"

	"github.com/spf13/cobra"

	"nomadly/internal/interfaces/cli/migrate"
	"nomadly/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nomadly",
		Short: "Nomadly - crypto payment and domain fulfillment service",
		Long:  `Nomadly accepts cryptocurrency payments for domain registrations and wallet deposits, reconciles received amounts, and fulfills paid orders through registrar and DNS integrations.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

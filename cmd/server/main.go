package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "flightwatch",
		Short:         "Flight status watcher",
		Long:          "Polls a flight status provider for subscribed flights and notifies subscribers of delays, gate or terminal changes and cancellations.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to an optional YAML or JSON configuration file")

	rootCmd.AddCommand(newServeCmd(&configFile))
	rootCmd.AddCommand(newReconcileCmd(&configFile))
	rootCmd.AddCommand(newGmailTokenCmd(&configFile))

	return rootCmd
}

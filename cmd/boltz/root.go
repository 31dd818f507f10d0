package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"boltz/internal/logging"
)

func newRootCommand() *cobra.Command {
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:           "boltz",
		Short:         "Settings validation and mesh data inspection for transport calculations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{Level: logLevel, Format: logFormat})
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(newSettingsCommand())
	rootCmd.AddCommand(newMeshCommand())

	return rootCmd
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"boltz/internal/settings"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Validate and manage settings documents",
	}
	cmd.AddCommand(newSettingsValidateCommand())
	cmd.AddCommand(newSettingsInitCommand())
	cmd.AddCommand(newSettingsShowCommand())
	return cmd
}

func newSettingsValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a settings document against the default schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validated, err := settings.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d settings)\n", args[0], len(validated))
			return nil
		},
	}
}

func newSettingsInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write the default settings as a new document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("stat %s: %w", path, err)
				}
			}
			if err := settings.WriteFile(settings.Defaults(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default settings to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a validated settings document as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validated, err := settings.LoadFile(args[0])
			if err != nil {
				return err
			}
			raw, err := yaml.Marshal(map[string]any(validated))
			if err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
}

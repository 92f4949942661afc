// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/invowk/modreport/internal/config"
)

// newConfigCommand creates the `modreport config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modreport configuration",
		Long: `Manage modreport configuration.

Configuration is stored in:
  - Linux: ~/.config/modreport/config.cue
  - macOS: ~/Library/Application Support/modreport/config.cue
  - Windows: %APPDATA%\modreport\config.cue

A config.cue in the working directory is used when the user file is absent.
MODREPORT_* environment variables override file values
(e.g. MODREPORT_REPORT_FORMAT=json).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := cfg.Source()
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintln(out, SubtitleStyle.Render("// source: "+source))
			fmt.Fprint(out, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			path, created, err := config.CreateDefaultConfig(cfgDir)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintln(cmd.OutOrStdout(), WarningStyle.Render("Config file already exists: ")+path)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Created config file: ")+path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.flags.configPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), app.flags.configPath)
				return nil
			}
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	return cfgCmd
}

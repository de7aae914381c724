// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qol-tools/qol-tray/internal/config"
)

const configFlag = "config"

// NewRootCmd creates the root command for the qol-tray CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qol-tray",
		Short: "qol-tray - a tray host for small desktop plugins",
		Long: `qol-tray launches manifest-described plugins, supervises their
background daemons, and binds global hotkeys to plugin actions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String(configFlag, "", "config file path (default <config-dir>/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewPluginsCmd())
	cmd.AddCommand(NewHotkeysCmd())
	cmd.AddCommand(NewMenuCmd())

	return cmd
}

// loadConfig resolves settings for cmd from the config file and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to read --config: %w", err)
	}
	if path == "" {
		if path, err = config.FilePath(cmd.Flags()); err != nil {
			return nil, fmt.Errorf("failed to locate config file: %w", err)
		}
	}
	cfg, err := config.Load(cmd.Flags(), path)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

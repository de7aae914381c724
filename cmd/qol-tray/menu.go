// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qol-tools/qol-tray/internal/hotkey"
	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/internal/router"
)

// NewMenuCmd creates the menu subcommand, which prints the tray menu
// with the event id of every entry.
func NewMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Print the tray menu and its event ids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			registry := plugin.NewRegistry(cfg.PluginsDir)
			if _, err := registry.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load plugins: %w", err)
			}
			hotkeys, err := hotkey.NewStore(cfg.HotkeysPath()).Load()
			if err != nil {
				return fmt.Errorf("failed to load hotkeys: %w", err)
			}

			menu, _ := router.Builder{
				Plugins: registry.All(),
				Hotkeys: hotkeys,
			}.Build()
			printEntries(cmd.OutOrStdout(), menu.Entries, 0)
			return nil
		},
	}
}

func printEntries(w io.Writer, entries []router.Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		switch e.Kind {
		case router.EntrySeparator:
			_, _ = fmt.Fprintf(w, "%s---\n", indent)
			continue
		case router.EntryCheckbox:
			mark := "[ ]"
			if e.Checked {
				mark = "[x]"
			}
			_, _ = fmt.Fprintf(w, "%s%s %s", indent, mark, e.Label)
		default:
			_, _ = fmt.Fprintf(w, "%s%s", indent, e.Label)
		}
		if e.Accelerator != "" {
			_, _ = fmt.Fprintf(w, " (%s)", e.Accelerator)
		}
		_, _ = fmt.Fprintf(w, "  %s\n", e.ID)
		printEntries(w, e.Children, depth+1)
	}
}

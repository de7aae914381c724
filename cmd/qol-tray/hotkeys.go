// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qol-tools/qol-tray/internal/hotkey"
)

// NewHotkeysCmd creates the hotkeys command group. Edits are written to
// hotkeys.json; a running host picks them up through its file watcher.
func NewHotkeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotkeys",
		Short: "Manage global hotkey bindings",
	}
	cmd.AddCommand(newHotkeysListCmd())
	cmd.AddCommand(newHotkeysAddCmd())
	cmd.AddCommand(newHotkeysRemoveCmd())
	cmd.AddCommand(newHotkeysToggleCmd("enable", "Enable a hotkey binding", true))
	cmd.AddCommand(newHotkeysToggleCmd("disable", "Disable a hotkey binding", false))
	cmd.AddCommand(newHotkeysKeysCmd())
	return cmd
}

func hotkeyStore(cmd *cobra.Command) (*hotkey.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return hotkey.NewStore(cfg.HotkeysPath()), nil
}

func newHotkeysListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hotkey bindings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			store, err := hotkeyStore(cmd)
			if err != nil {
				return err
			}
			cfg, err := store.Load()
			if err != nil {
				return fmt.Errorf("failed to load hotkeys: %w", err)
			}
			bindings := cfg.Hotkeys
			if bindings == nil {
				bindings = []hotkey.Binding{}
			}

			return writeOutput(cmd.OutOrStdout(), output, bindings, func(w *tabwriter.Writer) {
				_, _ = fmt.Fprintln(w, "ID\tKEY\tPLUGIN\tACTION\tENABLED")
				for _, b := range bindings {
					key := b.Key
					if combo, err := hotkey.ParseCombo(b.Key); err == nil {
						key = combo.String()
					}
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", b.ID, key, b.PluginID, b.Action, b.Enabled)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, json, yaml)")
	return cmd
}

func newHotkeysAddCmd() *cobra.Command {
	var (
		key      string
		pluginID string
		action   string
		disabled bool
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Bind a key combination to a plugin action",
		Example: `  qol-tray hotkeys add --key "Ctrl+Shift+R" --plugin recorder --action start`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := hotkeyStore(cmd)
			if err != nil {
				return err
			}
			var added hotkey.Binding
			err = store.Update(func(cfg *hotkey.Config) error {
				b, addErr := cfg.Add(hotkey.Binding{
					Key:      key,
					PluginID: pluginID,
					Action:   action,
					Enabled:  !disabled,
				})
				added = b
				return addErr
			})
			if err != nil {
				return fmt.Errorf("failed to add hotkey: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "key combination, e.g. Ctrl+Shift+R")
	cmd.Flags().StringVar(&pluginID, "plugin", "", "plugin id")
	cmd.Flags().StringVar(&action, "action", "", "action passed to the plugin's run script")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "store the binding disabled")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("plugin")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

func newHotkeysRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a hotkey binding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := hotkeyStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Update(func(cfg *hotkey.Config) error {
				return cfg.Remove(args[0])
			}); err != nil {
				return fmt.Errorf("failed to remove hotkey: %w", err)
			}
			return nil
		},
	}
}

func newHotkeysToggleCmd(verb, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := hotkeyStore(cmd)
			if err != nil {
				return err
			}
			if err := store.Update(func(cfg *hotkey.Config) error {
				return cfg.SetEnabled(args[0], enabled)
			}); err != nil {
				return fmt.Errorf("failed to %s hotkey: %w", verb, err)
			}
			return nil
		},
	}
}

func newHotkeysKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List key names accepted in combinations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, k := range hotkey.Keys() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), k.Label())
			}
			return nil
		},
	}
}

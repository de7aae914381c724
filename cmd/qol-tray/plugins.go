// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qol-tools/qol-tray/internal/plugin"
)

// PluginSummary is one row of `plugins list`.
type PluginSummary struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Version   string   `json:"version" yaml:"version"`
	Path      string   `json:"path" yaml:"path"`
	Platforms []string `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Daemon    string   `json:"daemon,omitempty" yaml:"daemon,omitempty"`
}

// NewPluginsCmd creates the plugins command group.
func NewPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect installed plugins",
	}
	cmd.AddCommand(newPluginsListCmd())
	cmd.AddCommand(newPluginsValidateCmd())
	cmd.AddCommand(newPluginsSchemaCmd())
	return cmd
}

func newPluginsListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plugins available on this platform",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			registry := plugin.NewRegistry(cfg.PluginsDir)
			if _, err := registry.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load plugins: %w", err)
			}
			summaries := summarize(registry.All())

			return writeOutput(cmd.OutOrStdout(), output, summaries, func(w *tabwriter.Writer) {
				_, _ = fmt.Fprintln(w, "ID\tNAME\tVERSION\tDAEMON")
				for _, s := range summaries {
					daemon := s.Daemon
					if daemon == "" {
						daemon = "-"
					}
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Version, daemon)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format (table, json, yaml)")
	return cmd
}

func summarize(runtimes []*plugin.Runtime) []PluginSummary {
	out := make([]PluginSummary, 0, len(runtimes))
	for _, rt := range runtimes {
		s := PluginSummary{
			ID:        rt.ID,
			Name:      rt.Manifest.Plugin.Name,
			Version:   rt.Manifest.Plugin.Version,
			Path:      rt.Dir,
			Platforms: rt.Manifest.Plugin.Platforms,
		}
		if rt.Manifest.DaemonEnabled() {
			s.Daemon = rt.Manifest.Daemon.Command
		}
		out = append(out, s)
	}
	return out
}

func newPluginsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plugin-dir>...",
		Short: "Validate plugin manifests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, dir := range args {
				path := dir
				if !strings.HasSuffix(path, plugin.ManifestFile) {
					path = filepath.Join(dir, plugin.ManifestFile)
				}
				data, err := os.ReadFile(path) //nolint:gosec // path is a user-supplied CLI argument
				if err == nil {
					_, err = plugin.ParseManifest(data)
				}
				if err != nil {
					failed++
					cmd.PrintErrf("%s: %v\n", path, err)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d manifests invalid", failed, len(args))
			}
			return nil
		},
	}
}

func newPluginsSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the plugin.toml JSON Schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := plugin.GenerateSchema()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return err
		},
	}
}

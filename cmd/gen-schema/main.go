// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Command gen-schema writes the plugin.toml JSON Schema for editors and CI.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qol-tools/qol-tray/internal/plugin"
)

func main() {
	outPath := flag.String("out", filepath.Join("schemas", "plugin.schema.json"), "output file")
	flag.Parse()

	schema, err := plugin.GenerateSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, schema, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", *outPath)
}

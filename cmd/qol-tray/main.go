// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package main is the entry point for the qol-tray host.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	code := 0
	runOnMainThread(func() {
		cmd := NewRootCmd()
		cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
		if err := cmd.Execute(); err != nil {
			code = 1
		}
	})
	os.Exit(code)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build darwin && cgo

package main

import "golang.design/x/hotkey/mainthread"

// runOnMainThread hands the process main thread to the Cocoa event loop,
// which macOS requires for global hotkey delivery, and runs fn beside it.
func runOnMainThread(fn func()) {
	mainthread.Init(fn)
}

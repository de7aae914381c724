// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

//go:build !(darwin && cgo)

package main

func runOnMainThread(fn func()) {
	fn()
}

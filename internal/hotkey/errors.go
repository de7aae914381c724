// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package hotkey

import (
	"github.com/samber/oops"
)

// Error codes for hotkey parsing, registration and config persistence.
const (
	CodeHotkeyParse    = "HOTKEY_PARSE"
	CodeHotkeyRegister = "HOTKEY_REGISTER"
	CodeHotkeyBackend  = "HOTKEY_BACKEND"
	CodeHotkeyConfig   = "HOTKEY_CONFIG"
	CodeBindingMissing = "HOTKEY_BINDING_NOT_FOUND"
)

func errParse(key, reason string) error {
	return oops.Code(CodeHotkeyParse).
		With("key", key).
		Errorf("invalid hotkey %q: %s", key, reason)
}

func errRegister(key, bindingID string, cause error) error {
	return oops.Code(CodeHotkeyRegister).
		With("key", key).
		With("binding", bindingID).
		Wrapf(cause, "failed to register hotkey")
}

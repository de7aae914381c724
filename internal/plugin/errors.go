// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package plugin

import (
	"github.com/samber/oops"
)

// Error codes for plugin loading and lookup failures.
const (
	CodeManifestInvalid = "MANIFEST_INVALID"
	CodePluginNotFound  = "PLUGIN_NOT_FOUND"
	CodePluginsDir      = "PLUGINS_DIR"
	CodeScriptMissing   = "SCRIPT_MISSING"
	CodeConfigUpdate    = "PLUGIN_CONFIG"
)

// ErrManifest wraps a manifest read, parse or validation failure for dir.
func ErrManifest(dir string, cause error) error {
	return oops.Code(CodeManifestInvalid).
		With("dir", dir).
		Wrapf(cause, "invalid plugin manifest")
}

// ErrNotFound reports a plugin id that is not loaded.
func ErrNotFound(id string) error {
	return oops.Code(CodePluginNotFound).
		With("plugin", id).
		Errorf("plugin not found: %s", id)
}

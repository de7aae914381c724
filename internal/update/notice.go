// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package update decides whether a newer host release is available.
package update

import (
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

// CodeInvalidVersion marks an unparsable version string.
const CodeInvalidVersion = "UPDATE_VERSION"

// Notice tracks the running version and the newest known release.
// Discovering releases is left to the caller.
type Notice struct {
	current *semver.Version

	mu     sync.RWMutex
	latest *semver.Version
}

// NewNotice creates a notice for the running version.
func NewNotice(current string) (*Notice, error) {
	v, err := semver.NewVersion(current)
	if err != nil {
		return nil, oops.Code(CodeInvalidVersion).With("version", current).Wrap(err)
	}
	return &Notice{current: v}, nil
}

// Current returns the running version.
func (n *Notice) Current() string {
	return n.current.String()
}

// Offer records a release. Versions not newer than the current or the
// previously offered one are ignored. It reports whether the offer was kept.
func (n *Notice) Offer(version string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, oops.Code(CodeInvalidVersion).With("version", version).Wrap(err)
	}
	if !v.GreaterThan(n.current) {
		return false, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.latest != nil && !v.GreaterThan(n.latest) {
		return false, nil
	}
	n.latest = v
	return true, nil
}

// Available returns the newest offered version, if one is newer than current.
func (n *Notice) Available() (string, bool) {
	if n == nil {
		return "", false
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.latest == nil {
		return "", false
	}
	return n.latest.String(), true
}

// Label returns the menu label for the available update.
func (n *Notice) Label() string {
	v, ok := n.Available()
	if !ok {
		return ""
	}
	return "Update to v" + v
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package router

import (
	"strconv"
	"sync"

	"github.com/qol-tools/qol-tray/internal/plugin"
)

// MenuProvider is a built-in feature contributing menu items.
type MenuProvider interface {
	// MenuItems returns the feature's current items; ids are local to the feature.
	MenuItems() []plugin.MenuItem
	// HandleEvent handles activation of a local item id.
	HandleEvent(id string) error
}

// Features is an ordered registry of MenuProviders.
type Features struct {
	mu   sync.RWMutex
	list []MenuProvider
}

// Register appends p and returns its index.
func (f *Features) Register(p MenuProvider) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, p)
	return len(f.list) - 1
}

// All returns the registered providers in registration order.
func (f *Features) All() []MenuProvider {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]MenuProvider(nil), f.list...)
}

// FeatureScope returns the event-id scope of the feature at index.
func FeatureScope(index int) string {
	return "feature_" + strconv.Itoa(index)
}

// featureHandler passes the local item id to p.
func featureHandler(p MenuProvider) Handler {
	return func(eventID string) (Result, error) {
		if err := p.HandleEvent(LocalID(eventID)); err != nil {
			return Continue, err
		}
		return Continue, nil
	}
}

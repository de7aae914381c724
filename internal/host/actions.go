// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

package host

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/samber/oops"

	"github.com/qol-tools/qol-tray/internal/plugin"
	"github.com/qol-tools/qol-tray/internal/router"
)

// Error codes for host actions.
const (
	CodeOpenUI         = "OPEN_UI"
	CodeUnknownControl = "UNKNOWN_CONTROL"
)

// PluginURL returns the settings page of a plugin under base.
func PluginURL(base, pluginID string) string {
	return strings.TrimRight(base, "/") + "/plugins/" + url.PathEscape(pluginID) + "/"
}

// pluginHandler serves every event under "<pluginId>::".
func (h *Host) pluginHandler(rt *plugin.Runtime) router.Handler {
	return func(eventID string) (router.Result, error) {
		return router.Continue, h.runItem(rt, router.LocalID(eventID))
	}
}

func (h *Host) runItem(rt *plugin.Runtime, local string) error {
	if local == router.OpenItem {
		return h.openUI(rt)
	}

	item, ok := rt.FindItem(local)
	if !ok {
		slog.Warn("unknown plugin menu item", "plugin", rt.ID, "item", local)
		return nil
	}

	var (
		action    plugin.ActionType
		configKey string
	)
	switch it := item.(type) {
	case *plugin.Action:
		action, configKey = it.Action, it.ConfigKey
	case *plugin.Checkbox:
		action, configKey = it.Action, it.ConfigKey
	default:
		slog.Warn("menu item is not actionable", "plugin", rt.ID, "item", local)
		return nil
	}

	switch action {
	case plugin.ActionSettings:
		return h.openUI(rt)
	case plugin.ActionRun, plugin.ActionCustom:
		return h.launcher.LaunchIn(context.Background(), rt, local)
	case plugin.ActionToggleConfig:
		return h.toggle(rt, local, configKey)
	default:
		slog.Warn("unsupported plugin action", "plugin", rt.ID, "item", local, "action", action)
		return nil
	}
}

func (h *Host) openUI(rt *plugin.Runtime) error {
	target := PluginURL(h.uiBaseURL, rt.ID)
	if err := h.openURL(target); err != nil {
		return oops.Code(CodeOpenUI).With("plugin", rt.ID).With("url", target).Wrapf(err, "open plugin settings")
	}
	slog.Debug("opened plugin settings", "plugin", rt.ID, "url", target)
	return nil
}

func (h *Host) toggle(rt *plugin.Runtime, local, key string) error {
	if key == "" {
		slog.Warn("toggle-config item has no config_key", "plugin", rt.ID, "item", local)
		return nil
	}
	value, err := rt.ToggleConfig(key)
	if err != nil {
		return err
	}
	slog.Info("plugin config toggled", "plugin", rt.ID, "key", key, "value", value)
	h.RebuildMenu()
	return nil
}

// controls is the built-in feature for host-level menu actions.
type controls struct {
	host *Host
}

// Control item ids.
const (
	ControlReload        = "reload"
	ControlReloadHotkeys = "reload_hotkeys"
)

func (c *controls) MenuItems() []plugin.MenuItem {
	return []plugin.MenuItem{
		&plugin.Action{ID: ControlReload, Label: "Reload Plugins", Action: plugin.ActionCustom},
		&plugin.Action{ID: ControlReloadHotkeys, Label: "Reload Hotkeys", Action: plugin.ActionCustom},
	}
}

func (c *controls) HandleEvent(id string) error {
	switch id {
	case ControlReload:
		return c.host.Reload(context.Background())
	case ControlReloadHotkeys:
		if c.host.reloader == nil {
			slog.Warn("hotkey reload requested but no dispatcher is running")
			return nil
		}
		c.host.reloader.TriggerReload()
		return nil
	default:
		return oops.Code(CodeUnknownControl).With("item", id).Errorf("unknown control")
	}
}

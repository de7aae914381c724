// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 qol-tray Contributors

// Package config loads qol-tray's runtime settings from an optional YAML
// file layered under command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/qol-tools/qol-tray/internal/logging"
	"github.com/qol-tools/qol-tray/internal/xdg"
)

// Flag and file keys.
const (
	KeyPluginsDir         = "plugins-dir"
	KeyConfigDir          = "config-dir"
	KeyLogFormat          = "log-format"
	KeyLogLevel           = "log-level"
	KeyMetricsAddr        = "metrics-addr"
	KeyDaemonGracePeriod  = "daemon-grace-period"
	KeyDaemonStopTimeout  = "daemon-stop-timeout"
	KeyDaemonStopPoll     = "daemon-stop-poll"
	KeyOrphanWait         = "orphan-wait"
	KeyHotkeyPollInterval = "hotkey-poll-interval"
	KeyHotkeyWatch        = "hotkey-watch"
	KeyEventCapacity      = "event-capacity"
	KeyUIBaseURL          = "ui-base-url"
	KeyUpdateAvailable    = "update-available"
)

// Default values.
const (
	defaultLogFormat          = logging.FormatJSON
	defaultLogLevel           = "info"
	defaultDaemonGracePeriod  = 100 * time.Millisecond
	defaultDaemonStopTimeout  = 2 * time.Second
	defaultDaemonStopPoll     = 50 * time.Millisecond
	defaultOrphanWait         = 500 * time.Millisecond
	defaultHotkeyPollInterval = 50 * time.Millisecond
	defaultHotkeyWatch        = true
	defaultEventCapacity      = 64
	defaultUIBaseURL          = "http://127.0.0.1:42700"
)

// CodeConfigLoad marks failures reading or decoding configuration sources.
const CodeConfigLoad = "CONFIG_LOAD"

// Config holds every runtime setting.
type Config struct {
	PluginsDir         string        `koanf:"plugins-dir"`
	ConfigDir          string        `koanf:"config-dir"`
	LogFormat          string        `koanf:"log-format"`
	LogLevel           string        `koanf:"log-level"`
	MetricsAddr        string        `koanf:"metrics-addr"`
	DaemonGracePeriod  time.Duration `koanf:"daemon-grace-period"`
	DaemonStopTimeout  time.Duration `koanf:"daemon-stop-timeout"`
	DaemonStopPoll     time.Duration `koanf:"daemon-stop-poll"`
	OrphanWait         time.Duration `koanf:"orphan-wait"`
	HotkeyPollInterval time.Duration `koanf:"hotkey-poll-interval"`
	HotkeyWatch        bool          `koanf:"hotkey-watch"`
	EventCapacity      int           `koanf:"event-capacity"`
	UIBaseURL          string        `koanf:"ui-base-url"`
	UpdateAvailable    string        `koanf:"update-available"`
}

// Default returns a Config populated with built-in defaults. Directory
// fields stay empty until Resolve fills them.
func Default() Config {
	return Config{
		LogFormat:          defaultLogFormat,
		LogLevel:           defaultLogLevel,
		DaemonGracePeriod:  defaultDaemonGracePeriod,
		DaemonStopTimeout:  defaultDaemonStopTimeout,
		DaemonStopPoll:     defaultDaemonStopPoll,
		OrphanWait:         defaultOrphanWait,
		HotkeyPollInterval: defaultHotkeyPollInterval,
		HotkeyWatch:        defaultHotkeyWatch,
		EventCapacity:      defaultEventCapacity,
		UIBaseURL:          defaultUIBaseURL,
	}
}

// RegisterFlags adds every setting to fs with its default value.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyPluginsDir, "", "plugins directory (default <config-dir>/plugins)")
	fs.String(KeyConfigDir, "", "config directory (default $XDG_CONFIG_HOME/qol-tray)")
	fs.String(KeyLogFormat, d.LogFormat, "log format (json, text)")
	fs.String(KeyLogLevel, d.LogLevel, "log level (debug, info, warn, error)")
	fs.String(KeyMetricsAddr, "", "metrics and health listen address (empty disables)")
	fs.Duration(KeyDaemonGracePeriod, d.DaemonGracePeriod, "time a daemon must survive after spawn")
	fs.Duration(KeyDaemonStopTimeout, d.DaemonStopTimeout, "time to wait for a daemon to exit before killing it")
	fs.Duration(KeyDaemonStopPoll, d.DaemonStopPoll, "interval between daemon exit checks")
	fs.Duration(KeyOrphanWait, d.OrphanWait, "time to wait for an orphaned daemon to exit before killing it")
	fs.Duration(KeyHotkeyPollInterval, d.HotkeyPollInterval, "hotkey event poll interval")
	fs.Bool(KeyHotkeyWatch, d.HotkeyWatch, "reload hotkeys when hotkeys.json changes")
	fs.Int(KeyEventCapacity, d.EventCapacity, "per-subscriber event buffer")
	fs.String(KeyUIBaseURL, d.UIBaseURL, "base URL of the plugin settings UI")
	fs.String(KeyUpdateAvailable, "", "newest released version, shown as an update entry when newer than this build")
}

// FilePath returns the config file Load reads when no explicit path is
// given: <config-dir>/config.yaml, honoring a --config-dir flag.
func FilePath(flags *pflag.FlagSet) (string, error) {
	if flags != nil {
		if f := flags.Lookup(KeyConfigDir); f != nil && f.Value.String() != "" {
			return xdg.ConfigFilePath(f.Value.String()), nil
		}
	}
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return xdg.ConfigFilePath(dir), nil
}

// Load builds a Config from the YAML file at path (skipped when missing)
// overlaid with flags. Flags set explicitly win over the file; flag
// defaults only fill keys the file leaves unset.
func Load(flags *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code(CodeConfigLoad).With("path", path).Wrapf(err, "read config file")
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code(CodeConfigLoad).With("path", path).Wrapf(err, "stat config file")
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code(CodeConfigLoad).Wrapf(err, "read flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code(CodeConfigLoad).With("path", path).Wrapf(err, "decode config")
	}
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, oops.Code(CodeConfigLoad).With("path", path).Wrap(err)
	}
	return &cfg, nil
}

// Resolve fills empty directory settings from the XDG layout.
func (c *Config) Resolve() error {
	if c.ConfigDir == "" {
		dir, err := xdg.ConfigDir()
		if err != nil {
			return err
		}
		c.ConfigDir = dir
	}
	if c.PluginsDir == "" {
		c.PluginsDir = xdg.PluginsDir(c.ConfigDir)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LogFormat != logging.FormatJSON && c.LogFormat != logging.FormatText {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	durations := []struct {
		key string
		val time.Duration
	}{
		{KeyDaemonGracePeriod, c.DaemonGracePeriod},
		{KeyDaemonStopTimeout, c.DaemonStopTimeout},
		{KeyDaemonStopPoll, c.DaemonStopPoll},
		{KeyOrphanWait, c.OrphanWait},
		{KeyHotkeyPollInterval, c.HotkeyPollInterval},
	}
	for _, d := range durations {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.key, d.val)
		}
	}
	if c.EventCapacity < 1 {
		return fmt.Errorf("event-capacity must be at least 1, got %d", c.EventCapacity)
	}
	if c.UIBaseURL == "" {
		return fmt.Errorf("ui-base-url is required")
	}
	return nil
}

// HotkeysPath returns the hotkey bindings file inside ConfigDir.
func (c *Config) HotkeysPath() string {
	return xdg.HotkeysPath(c.ConfigDir)
}

// PIDFilePath returns the orphan-daemon registry file inside ConfigDir.
func (c *Config) PIDFilePath() string {
	return xdg.PIDFilePath(c.ConfigDir)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpad Contributors

// Package config loads runtime configuration from an optional YAML file and
// command-line flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/inkpad/inkpad/internal/logging"
	"github.com/inkpad/inkpad/internal/xdg"
)

// Default values.
const (
	DefaultLogFormat   = "text"
	DefaultLogLevel    = "info"
	DefaultMetricsAddr = ""
)

// Config is the runtime configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Plugins PluginsConfig `koanf:"plugins"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig controls the observability server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// PluginsConfig controls plugin discovery and initial state.
type PluginsConfig struct {
	Dir         string                    `koanf:"dir"`
	HookTimeout time.Duration             `koanf:"hook_timeout"`
	Disabled    []string                  `koanf:"disabled"`
	Settings    map[string]map[string]any `koanf:"settings"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"log-format":   "log.format",
	"log-level":    "log.level",
	"metrics-addr": "metrics.addr",
	"plugins-dir":  "plugins.dir",
	"hook-timeout": "plugins.hook_timeout",
	"disable":      "plugins.disabled",
}

// BindFlags registers the flags Load understands on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("log-format", DefaultLogFormat, "log format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	fs.String("plugins-dir", "", "script plugins directory (default: XDG_CONFIG_HOME/inkpad/plugins)")
	fs.Duration("hook-timeout", 0, "deadline for a single plugin hook (0 = none)")
	fs.StringSlice("disable", nil, "plugin ids to install but leave inactive")
}

// Default returns the configuration used when nothing overrides it.
func Default() (*Config, error) {
	dir, err := xdg.PluginsDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Log:     LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
		Plugins: PluginsConfig{Dir: dir},
	}, nil
}

// Load builds a Config from defaults, the YAML file at path, and any flags
// the user changed on fs, in increasing priority. An empty path means the
// XDG config file, which may be absent. An explicit path must exist.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		if path, err = xdg.ConfigFile(); err != nil {
			return nil, err
		}
	}
	if err := loadFile(k, path, explicit); err != nil {
		return nil, err
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Wrapf(err, "loading flags")
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.In("config").Wrapf(err, "decoding configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return oops.In("config").With("path", path).Wrapf(err, "reading config file")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.In("config").With("path", path).Wrapf(err, "parsing config file")
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.In("config").With("log.format", c.Log.Format).
			Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Plugins.HookTimeout < 0 {
		return oops.In("config").With("plugins.hook_timeout", c.Plugins.HookTimeout).
			Errorf("plugins.hook_timeout must not be negative")
	}
	for _, id := range c.Plugins.Disabled {
		if id == "" {
			return oops.In("config").Errorf("plugins.disabled contains an empty id")
		}
	}
	return nil
}

// IsDisabled reports whether the plugin id is listed in plugins.disabled.
func (c *Config) IsDisabled(id string) bool {
	return slices.Contains(c.Plugins.Disabled, id)
}

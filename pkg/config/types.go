package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent neemsim configuration stored as config.toml
// in the .neemsim/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	Sim     SimConfig     `toml:"sim"`
	Data    DataConfig    `toml:"data"`
	Events  EventsConfig  `toml:"events"`
	API     APIConfig     `toml:"api"`
}

// StorageConfig holds episode database settings. SQLitePath and PostgresURL
// are mutually exclusive; when both are set PostgresURL wins.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresURL string `toml:"postgres_url,omitempty"`
}

// SimConfig holds simulator settings for replay and redo commands.
type SimConfig struct {
	// BridgeTarget is the base URL of a remote simulator bridge.
	// Empty means the in-process scene model.
	BridgeTarget string `toml:"bridge_target,omitempty"`

	// RealTime paces replayed transforms at recorded intervals instead of
	// stepping through them as fast as possible.
	RealTime bool `toml:"real_time,omitempty"`
}

// DataConfig holds mesh and scene data settings.
type DataConfig struct {
	// Dirs are local directories searched for mesh files before any
	// remote lookup.
	Dirs []string `toml:"dirs,omitempty"`

	// RepoURL is the base URL of the remote mesh data repository.
	RepoURL string `toml:"repo_url,omitempty"`
}

// EventsConfig holds replay event publishing settings.
type EventsConfig struct {
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
	Enabled bool     `toml:"enabled,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// splitList parses a comma-separated value into a list, dropping empty entries.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
// List-valued keys use comma-separated strings on the get/set surface.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_url": {
		get: func(c *Config) string { return c.Storage.PostgresURL },
		set: func(c *Config, v string) error { c.Storage.PostgresURL = v; return nil },
	},
	"sim.bridge_target": {
		get: func(c *Config) string { return c.Sim.BridgeTarget },
		set: func(c *Config, v string) error { c.Sim.BridgeTarget = v; return nil },
	},
	"sim.real_time": {
		get: func(c *Config) string { return strconv.FormatBool(c.Sim.RealTime) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for sim.real_time: %w", err)
			}
			c.Sim.RealTime = b
			return nil
		},
	},
	"data.dirs": {
		get: func(c *Config) string { return strings.Join(c.Data.Dirs, ",") },
		set: func(c *Config, v string) error { c.Data.Dirs = splitList(v); return nil },
	},
	"data.repo_url": {
		get: func(c *Config) string { return c.Data.RepoURL },
		set: func(c *Config, v string) error { c.Data.RepoURL = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error { c.Events.Brokers = splitList(v); return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"events.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Events.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for events.enabled: %w", err)
			}
			c.Events.Enabled = b
			return nil
		},
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
}

package config

import "github.com/knowrobco/neemsim/pkg/mesh"

const (
	defaultSQLitePath = "neems.sqlite"

	defaultAPIListen = ":8090"

	defaultEventsTopic  = "neemsim.replay"
	defaultEventsBroker = "localhost:9092"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			SQLitePath: defaultSQLitePath,
		},
		Data: DataConfig{
			RepoURL: mesh.DefaultDataLink,
		},
		Events: EventsConfig{
			Brokers: []string{defaultEventsBroker},
			Topic:   defaultEventsTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}

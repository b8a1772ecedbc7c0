// Package configcmder provides the config command for managing persistent
// neemsim configuration stored in the .neemsim/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent neemsim configuration.

Configuration is stored as config.toml in the .neemsim/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, storage.postgres_url,
  sim.bridge_target, sim.real_time,
  data.dirs, data.repo_url,
  events.brokers, events.topic, events.enabled,
  api.listen

Use subcommands to get, set, or list configuration values:
  neemsim config set <key> <value>    Set a configuration value
  neemsim config get <key>            Get a configuration value
  neemsim config list                 List all configuration values

Examples:
  neemsim config set storage.postgres_url postgres://user@host/neems
  neemsim config set sim.real_time true
  neemsim config get data.repo_url
  neemsim config list`

const configShortDesc string = "Manage persistent neemsim configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

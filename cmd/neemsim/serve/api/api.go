// Package apicmder provides the standalone API server cobra command.
package apicmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowrobco/neemsim/api"
	"github.com/knowrobco/neemsim/cmd/neemsim/dbtarget"
	"github.com/knowrobco/neemsim/pkg/config"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/storage"
)

type apiCommander struct {
	listen      string
	sqlitePath  string
	postgresURL string
	debug       bool
}

var apiFlags = config.FlagSet{
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to SQLite episode database",
	},
	config.FlagPostgres: {
		Name: "postgres", Shorthand: "p", ViperKey: "storage.postgres_url",
		Description: "PostgreSQL episode database URL",
	},
	config.FlagAPIListen: {
		Name: "listen", Shorthand: "l", ViperKey: "api.listen",
		Description: "Address for the API server to listen on",
	},
}

var apiFlagKeys = []string{config.FlagSQLite, config.FlagPostgres, config.FlagAPIListen}

const apiLongDesc string = `Run the HTTP API server for browsing recorded episodes, their task
sequences, plans, and motion data.`

const apiShortDesc string = "Run the episode API server"

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, err := cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %v", err)
			}

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing configuration: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, apiFlags, apiFlagKeys)

			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresURL = v.GetString("storage.postgres_url")
			cmder.listen = v.GetString("api.listen")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, apiFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, apiFlags, config.FlagPostgres, &cmder.postgresURL)
	config.AddStringFlag(cmd, apiFlags, config.FlagAPIListen, &cmder.listen)

	return cmd
}

func (c *apiCommander) run(cmd *cobra.Command) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true))

	url, err := dbtarget.Resolve(c.sqlitePath, c.postgresURL)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	conn, err := storage.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("opening episode database: %w", err)
	}
	defer conn.Close()

	server := api.NewServer(api.Config{ListenAddr: c.listen},
		neemquery.NewInterface(conn, neemquery.WithInterfaceLogger(log)), log)

	log.Info("starting API server", "listen", c.listen, "storage", conn.Dialect())

	return server.Run()
}

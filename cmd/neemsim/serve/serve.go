// Package servecmder provides the serve command with subcommands for running services.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/knowrobco/neemsim/api"
	"github.com/knowrobco/neemsim/api/mcp"
	"github.com/knowrobco/neemsim/cmd/neemsim/dbtarget"
	apicmder "github.com/knowrobco/neemsim/cmd/neemsim/serve/api"
	"github.com/knowrobco/neemsim/pkg/config"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/storage"
)

type serveCommander struct {
	listen      string
	sqlitePath  string
	postgresURL string
	noMCP       bool
	debug       bool
}

var serveFlags = config.FlagSet{
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
		Description: "Address to listen on",
	},
}

var serveFlagKeys = []string{config.FlagSQLite, config.FlagPostgres, config.FlagAPIListen}

const serveLongDesc string = `Run neemsim services.

Serves the episode HTTP API with the MCP server mounted under /mcp/, so
agents and dashboards share one listener:
  neemsim serve          Run the API server with MCP mounted
  neemsim serve api      Run just the API server`

const serveShortDesc string = "Run neemsim services"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, err := cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %v", err)
			}

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing configuration: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)

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

	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagPostgres, &cmder.postgresURL)
	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the mounted MCP server")

	cmd.AddCommand(apicmder.NewAPICmd())

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
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

	iface := neemquery.NewInterface(conn, neemquery.WithInterfaceLogger(log))

	server := api.NewServer(api.Config{ListenAddr: c.listen}, iface, log)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Interface: iface,
		Noop:      c.noMCP,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	if !c.noMCP {
		server.Mount("/mcp/", mcpServer.Handler())
	}

	log.Info("starting services",
		"listen", c.listen,
		"storage", conn.Dialect(),
		"mcp", !c.noMCP,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

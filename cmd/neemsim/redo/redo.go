// Package redocmder provides the redo command, which re-executes
// recorded tasks of an episode as abstract actions in simulation.
package redocmder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/knowrobco/neemsim/cmd/neemsim/dbtarget"
	"github.com/knowrobco/neemsim/pkg/cliui"
	"github.com/knowrobco/neemsim/pkg/config"
	"github.com/knowrobco/neemsim/pkg/dotdir"
	"github.com/knowrobco/neemsim/pkg/events"
	"github.com/knowrobco/neemsim/pkg/events/kafka"
	"github.com/knowrobco/neemsim/pkg/events/nop"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/mesh"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/redo"
	"github.com/knowrobco/neemsim/pkg/sim"
	"github.com/knowrobco/neemsim/pkg/sim/bridge"
	"github.com/knowrobco/neemsim/pkg/sim/world"
	"github.com/knowrobco/neemsim/pkg/storage"
)

type redoCommander struct {
	sqlitePath  string
	postgresURL string
	simTarget   string
	dataDirs    []string
	repoURL     string
	brokers     []string
	topic       string
	eventsOn    bool
	configDir   string
	debug       bool
}

var redoFlags = config.FlagSet{
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to SQLite episode database",
	},
	config.FlagPostgres: {
		Name: "postgres", Shorthand: "p", ViperKey: "storage.postgres_url",
		Description: "PostgreSQL episode database URL",
	},
	config.FlagSimTarget: {
		Name: "sim-target", ViperKey: "sim.bridge_target",
		Description: "Simulation bridge URL (empty for the built-in scene)",
	},
	config.FlagDataDirs: {
		Name: "data-dirs", ViperKey: "data.dirs",
		Description: "Local directories searched for mesh and URDF files",
	},
	config.FlagRepoURL: {
		Name: "repo-url", ViperKey: "data.repo_url",
		Description: "Remote mesh repository URL",
	},
	config.FlagBrokers: {
		Name: "brokers", ViperKey: "events.brokers",
		Description: "Kafka brokers for action lifecycle events",
	},
	config.FlagTopic: {
		Name: "topic", ViperKey: "events.topic",
		Description: "Kafka topic for action lifecycle events",
	},
	config.FlagEventsOn: {
		Name: "events", ViperKey: "events.enabled",
		Description: "Publish action lifecycle events to Kafka",
	},
}

var redoFlagKeys = []string{
	config.FlagSQLite, config.FlagPostgres, config.FlagSimTarget,
	config.FlagDataDirs, config.FlagRepoURL,
	config.FlagBrokers, config.FlagTopic, config.FlagEventsOn,
}

const redoLongDesc string = `Re-execute recorded tasks of an episode as abstract actions.

Instead of streaming raw poses, redo maps recorded task types onto
abstract actions (navigate, pick up, place, transport, ...) and performs
them in simulation, starting from the recorded pre-task scene state.

Use subcommands to choose what to redo:
  neemsim redo plan <id>     Redo every mapped task of the episode
  neemsim redo pick <id>     Redo the first recorded pick-up task
  neemsim redo fetch <id>    Redo the first recorded fetch task
  neemsim redo grasp <id>    Redo the first recorded grasp`

const redoShortDesc string = "Re-execute recorded tasks as abstract actions"

func NewRedoCmd() *cobra.Command {
	cmder := &redoCommander{}

	cmd := &cobra.Command{
		Use:   "redo",
		Short: redoShortDesc,
		Long:  redoLongDesc,
	}

	cmd.AddCommand(
		cmder.newActionCmd("plan", "Redo every mapped task of the episode",
			func(pl *redo.Planner) actionFunc { return pl.RedoPlan }),
		cmder.newActionCmd("pick", "Redo the first recorded pick-up task",
			func(pl *redo.Planner) actionFunc { return pl.RedoPick }),
		cmder.newActionCmd("fetch", "Redo the first recorded fetch task",
			func(pl *redo.Planner) actionFunc { return pl.RedoFetch }),
		cmder.newActionCmd("grasp", "Redo the first recorded grasp",
			func(pl *redo.Planner) actionFunc { return pl.RedoGrasp }),
	)

	return cmd
}

type actionFunc func(ctx context.Context, episodeSQLID int64) error

func (c *redoCommander) newActionCmd(use, short string, pick func(*redo.Planner) actionFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <episode-sql-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			c.configDir, err = cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %v", err)
			}

			v, err := config.InitViper(c.configDir)
			if err != nil {
				return fmt.Errorf("initializing configuration: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, redoFlags, redoFlagKeys)

			c.sqlitePath = v.GetString("storage.sqlite_path")
			c.postgresURL = v.GetString("storage.postgres_url")
			c.simTarget = v.GetString("sim.bridge_target")
			c.dataDirs = v.GetStringSlice("data.dirs")
			c.repoURL = v.GetString("data.repo_url")
			c.brokers = v.GetStringSlice("events.brokers")
			c.topic = v.GetString("events.topic")
			c.eventsOn = v.GetBool("events.enabled")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			episodeSQLID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid episode id %q: must be the numeric SQL id", args[0])
			}
			c.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return c.run(cmd.Context(), use, episodeSQLID, pick)
		},
	}

	config.AddStringFlag(cmd, redoFlags, config.FlagSQLite, &c.sqlitePath)
	config.AddStringFlag(cmd, redoFlags, config.FlagPostgres, &c.postgresURL)
	config.AddStringFlag(cmd, redoFlags, config.FlagSimTarget, &c.simTarget)
	config.AddStringSliceFlag(cmd, redoFlags, config.FlagDataDirs, &c.dataDirs)
	config.AddStringFlag(cmd, redoFlags, config.FlagRepoURL, &c.repoURL)
	config.AddStringSliceFlag(cmd, redoFlags, config.FlagBrokers, &c.brokers)
	config.AddStringFlag(cmd, redoFlags, config.FlagTopic, &c.topic)
	config.AddBoolFlag(cmd, redoFlags, config.FlagEventsOn, &c.eventsOn)

	return cmd
}

func (c *redoCommander) run(ctx context.Context, action string, episodeSQLID int64, pick func(*redo.Planner) actionFunc) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	url, err := dbtarget.Resolve(c.sqlitePath, c.postgresURL)
	if err != nil {
		return err
	}

	conn, err := storage.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("opening episode database: %w", err)
	}
	defer conn.Close()

	iface := neemquery.NewInterface(conn, neemquery.WithInterfaceLogger(log))

	simulator := c.newSimulator(log)
	defer simulator.Close()

	publisher := c.newPublisher(log)
	defer publisher.Close()

	planner := redo.NewPlanner(iface, simulator, c.newResolver(log),
		redo.WithPublisher(publisher),
		redo.WithPlannerLogger(log),
	)

	log.Info("redoing episode", "action", action, "episode", episodeSQLID)

	start := time.Now()
	if err := pick(planner)(ctx, episodeSQLID); err != nil {
		return fmt.Errorf("redoing %s of episode %d: %w", action, episodeSQLID, err)
	}

	_ = dotdir.NewManager().SaveSession(&dotdir.SessionState{
		EpisodeID: episodeSQLID,
		Task:      action,
		SimTarget: c.simTarget,
	}, c.configDir)

	fmt.Printf("\n  %s Redid %s of episode %d in %s\n\n",
		cliui.SuccessMark, action, episodeSQLID, cliui.FormatDuration(time.Since(start)))
	return nil
}

func (c *redoCommander) newSimulator(log *slog.Logger) sim.Simulator {
	if c.simTarget != "" {
		log.Info("using simulation bridge", "target", c.simTarget)
		return bridge.New(c.simTarget,
			bridge.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))
	}
	log.Info("using built-in scene")
	return world.New()
}

func (c *redoCommander) newResolver(log *slog.Logger) *mesh.Resolver {
	dirs := c.dataDirs
	if dataDir, err := dotdir.NewManager().DataDir(c.configDir); err == nil {
		dirs = append(dirs, dataDir)
	}

	opts := []mesh.Option{
		mesh.WithDataDirs(dirs...),
		mesh.WithLogger(log),
	}
	if c.repoURL != "" {
		opts = append(opts,
			mesh.WithDataLink(c.repoURL),
			mesh.WithRepository(mesh.NewRepository(c.repoURL, mesh.WithRepositoryLogger(log))),
		)
	}
	return mesh.NewResolver(opts...)
}

func (c *redoCommander) newPublisher(log *slog.Logger) events.Publisher {
	if !c.eventsOn {
		return nop.NewPublisher()
	}
	log.Info("publishing action events", "brokers", c.brokers, "topic", c.topic)
	return kafka.NewPublisher(c.brokers, c.topic, kafka.WithLogger(log))
}

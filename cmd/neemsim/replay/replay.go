// Package replaycmder provides the replay command, which replays the
// recorded motion of an episode in simulation.
package replaycmder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
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
	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/replay"
	"github.com/knowrobco/neemsim/pkg/sim"
	"github.com/knowrobco/neemsim/pkg/sim/bridge"
	"github.com/knowrobco/neemsim/pkg/sim/world"
	"github.com/knowrobco/neemsim/pkg/storage"
)

type replayCommander struct {
	sqlitePath  string
	postgresURL string
	simTarget   string
	realTime    bool
	dataDirs    []string
	repoURL     string
	brokers     []string
	topic       string
	eventsOn    bool
	task        string
	resample    float64
	dryRun      bool
	configDir   string
	debug       bool
}

// replayFlags defines the flags of the replay command that participate
// in the viper precedence chain (flag > env > config file > default).
var replayFlags = config.FlagSet{
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
	config.FlagRealTime: {
		Name: "real-time", ViperKey: "sim.real_time",
		Description: "Pace replay by recorded timestamps",
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
		Description: "Kafka brokers for replay lifecycle events",
	},
	config.FlagTopic: {
		Name: "topic", ViperKey: "events.topic",
		Description: "Kafka topic for replay lifecycle events",
	},
	config.FlagEventsOn: {
		Name: "events", ViperKey: "events.enabled",
		Description: "Publish replay lifecycle events to Kafka",
	},
}

var replayFlagKeys = []string{
	config.FlagSQLite, config.FlagPostgres, config.FlagSimTarget,
	config.FlagRealTime, config.FlagDataDirs, config.FlagRepoURL,
	config.FlagBrokers, config.FlagTopic, config.FlagEventsOn,
}

const replayLongDesc string = `Replay the recorded motion of an episode in simulation.

Spawns the episode's environment and participants into a scene, then
steps every recorded pose sample through it in recorded order. With
--sim-target the scene lives behind a simulation bridge; without it a
built-in in-process scene is used.

Mesh and URDF descriptions are resolved from the configured data
directories first, then downloaded from the mesh repository.

Examples:
  neemsim replay 1
  neemsim replay 1 --task Pour
  neemsim replay 1 --sim-target http://localhost:9900 --real-time=false
  neemsim replay 1 --resample 0.1
  neemsim replay 1 --dry-run`

const replayShortDesc string = "Replay the recorded motion of an episode"

func NewReplayCmd() *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay <episode-sql-id>",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.configDir, err = cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %v", err)
			}

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("initializing configuration: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, replayFlags, replayFlagKeys)

			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresURL = v.GetString("storage.postgres_url")
			cmder.simTarget = v.GetString("sim.bridge_target")
			cmder.realTime = v.GetBool("sim.real_time")
			cmder.dataDirs = v.GetStringSlice("data.dirs")
			cmder.repoURL = v.GetString("data.repo_url")
			cmder.brokers = v.GetStringSlice("events.brokers")
			cmder.topic = v.GetString("events.topic")
			cmder.eventsOn = v.GetBool("events.enabled")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			episodeSQLID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid episode id %q: must be the numeric SQL id", args[0])
			}
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context(), episodeSQLID)
		},
	}

	config.AddStringFlag(cmd, replayFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, replayFlags, config.FlagPostgres, &cmder.postgresURL)
	config.AddStringFlag(cmd, replayFlags, config.FlagSimTarget, &cmder.simTarget)
	config.AddBoolFlag(cmd, replayFlags, config.FlagRealTime, &cmder.realTime)
	config.AddStringSliceFlag(cmd, replayFlags, config.FlagDataDirs, &cmder.dataDirs)
	config.AddStringFlag(cmd, replayFlags, config.FlagRepoURL, &cmder.repoURL)
	config.AddStringSliceFlag(cmd, replayFlags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, replayFlags, config.FlagTopic, &cmder.topic)
	config.AddBoolFlag(cmd, replayFlags, config.FlagEventsOn, &cmder.eventsOn)
	cmd.Flags().StringVarP(&cmder.task, "task", "t", "", "Only replay samples of a matching task type")
	cmd.Flags().Float64Var(&cmder.resample, "resample", 0, "Resample motion onto a fixed time step in seconds (0 keeps the recorded samples)")
	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Query and report the motion data without replaying it")

	return cmd
}

func (c *replayCommander) run(ctx context.Context, episodeSQLID int64) error {
	log, closeLog := c.newLogger()
	defer closeLog()

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

	var res *neem.Result
	err = cliui.Step(os.Stdout, fmt.Sprintf("Querying motion data of episode %d", episodeSQLID), func() error {
		var qerr error
		res, qerr = iface.MotionReplayData(ctx, episodeSQLID)
		return qerr
	})
	if err != nil {
		return fmt.Errorf("querying motion data: %w", err)
	}
	if c.task != "" {
		res = res.FilterByTaskType(c.task)
	}
	if res.Len() == 0 {
		return fmt.Errorf("episode %d has no replayable motion data", episodeSQLID)
	}

	data := replay.FromResult(res.NormalizeTime())
	if c.resample > 0 {
		data = data.Resample(c.resample)
	}
	if c.dryRun {
		c.report(episodeSQLID, res, data)
		return nil
	}

	resolver := c.newResolver(log)
	pool, err := mesh.NewPool(&mesh.PoolConfig{Resolver: resolver, Logger: log})
	if err != nil {
		return fmt.Errorf("starting prefetch pool: %w", err)
	}
	for _, participant := range res.Participants(true) {
		if participant == "" || neem.IsNil(participant) {
			continue
		}
		pool.Enqueue(mesh.Job{Participant: participant, Result: res})
	}

	simulator := c.newSimulator(log)
	defer simulator.Close()

	spawner := replay.NewSpawner(simulator, resolver, replay.WithSpawnerLogger(log))
	err = cliui.Step(os.Stdout, "Spawning scene", func() error {
		if _, serr := spawner.SpawnEnvironment(ctx, res); serr != nil {
			return serr
		}
		pool.Close() // prefetched downloads land in the data dir, so spawning finds them locally
		_, serr := spawner.SpawnParticipants(ctx, res)
		return serr
	})
	if err != nil {
		return fmt.Errorf("spawning scene: %w", err)
	}

	publisher := c.newPublisher(log)
	defer publisher.Close()

	episode := events.Episode{SQLID: episodeSQLID}
	if ids := res.EpisodeIDs(true); len(ids) > 0 {
		episode.ID = ids[0]
	}

	player := replay.NewPlayer(simulator, data,
		replay.WithRealTime(c.realTime),
		replay.WithPublisher(publisher),
		replay.WithEpisode(episode),
		replay.WithSceneNames(spawner.SceneNames()),
		replay.WithPlayerLogger(log),
	)

	log.Info("starting replay",
		"episode", episodeSQLID,
		"samples", data.Len(),
		"participants", len(data.UniqueInstances()),
		"real_time", c.realTime,
	)

	start := time.Now()
	if err := player.Start(ctx); err != nil {
		return fmt.Errorf("replaying episode %d: %w", episodeSQLID, err)
	}

	c.saveSession(episodeSQLID, episode.ID)

	fmt.Printf("\n  %s Replayed %d samples in %s\n\n",
		cliui.SuccessMark, data.Len(), cliui.FormatDuration(time.Since(start)))
	return nil
}

// newLogger builds the replay logger: pretty output on the terminal,
// fanned out to a JSON record in replay.log under the .neemsim
// directory. When the log file cannot be opened only the terminal
// logger is used.
func (c *replayCommander) newLogger() (*slog.Logger, func()) {
	terminal := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return terminal, func() {}
	}
	logFile, err := os.OpenFile(filepath.Join(target, "replay.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return terminal, func() {}
	}

	file := logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(logFile))
	return logger.Multi(terminal, file), func() { _ = logFile.Close() }
}

// newSimulator picks the scene backend: a bridge client when a target
// is configured, an in-process scene otherwise.
func (c *replayCommander) newSimulator(log *slog.Logger) sim.Simulator {
	if c.simTarget != "" {
		log.Info("using simulation bridge", "target", c.simTarget)
		return bridge.New(c.simTarget,
			bridge.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}))
	}
	log.Info("using built-in scene")
	return world.New()
}

func (c *replayCommander) newResolver(log *slog.Logger) *mesh.Resolver {
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

func (c *replayCommander) newPublisher(log *slog.Logger) events.Publisher {
	if !c.eventsOn {
		return nop.NewPublisher()
	}
	log.Info("publishing replay events", "brokers", c.brokers, "topic", c.topic)
	return kafka.NewPublisher(c.brokers, c.topic, kafka.WithLogger(log))
}

func (c *replayCommander) report(episodeSQLID int64, res *neem.Result, data replay.MotionData) {
	fmt.Println()
	fmt.Printf("  %s %d\n", cliui.KeyStyle.Render("Episode:"), episodeSQLID)
	fmt.Printf("  %s %d\n", cliui.KeyStyle.Render("Samples:"), data.Len())
	for _, instance := range data.UniqueInstances() {
		fmt.Printf("    %s\n", cliui.NameStyle.Render(instance))
	}
	if envs := res.Environments(true); len(envs) > 0 {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Environment:"), envs[0])
	}
	if len(data.Times) > 0 {
		fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Duration:"),
			cliui.FormatDuration(time.Duration(data.Times[len(data.Times)-1]*float64(time.Second))))
	}
	fmt.Println()
}

// saveSession records the replayed episode so follow-up commands can
// default to it. Failures only cost the convenience, so they are
// ignored.
func (c *replayCommander) saveSession(episodeSQLID int64, episodeID string) {
	_ = dotdir.NewManager().SaveSession(&dotdir.SessionState{
		EpisodeID:   episodeSQLID,
		EpisodeName: episodeID,
		Task:        c.task,
		SimTarget:   c.simTarget,
	}, c.configDir)
}

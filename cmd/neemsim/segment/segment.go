// Package segmentcmder provides the segment command, which detects
// contact and pick-up boundaries in an episode's recorded motion.
package segmentcmder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/knowrobco/neemsim/cmd/neemsim/dbtarget"
	"github.com/knowrobco/neemsim/pkg/cliui"
	"github.com/knowrobco/neemsim/pkg/config"
	"github.com/knowrobco/neemsim/pkg/events"
	"github.com/knowrobco/neemsim/pkg/events/kafka"
	"github.com/knowrobco/neemsim/pkg/events/nop"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/segment"
	"github.com/knowrobco/neemsim/pkg/storage"
)

type segmentCommander struct {
	sqlitePath  string
	postgresURL string
	brokers     []string
	topic       string
	eventsOn    bool
	distance    float64
	configDir   string
	debug       bool
}

// segmentFlags defines the flags of the segment command that
// participate in the viper precedence chain.
var segmentFlags = config.FlagSet{
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to SQLite episode database",
	},
	config.FlagPostgres: {
		Name: "postgres", Shorthand: "p", ViperKey: "storage.postgres_url",
		Description: "PostgreSQL episode database URL",
	},
	config.FlagBrokers: {
		Name: "brokers", ViperKey: "events.brokers",
		Description: "Kafka brokers for detected boundary events",
	},
	config.FlagTopic: {
		Name: "topic", ViperKey: "events.topic",
		Description: "Kafka topic for detected boundary events",
	},
	config.FlagEventsOn: {
		Name: "events", ViperKey: "events.enabled",
		Description: "Publish detected boundary events to Kafka",
	},
}

var segmentFlagKeys = []string{
	config.FlagSQLite, config.FlagPostgres,
	config.FlagBrokers, config.FlagTopic, config.FlagEventsOn,
}

const segmentLongDesc string = `Detect action boundaries in an episode's recorded motion.

Sweeps the recorded pose stream for objects coming into and out of
contact, and for objects leaving their supporting surface while held
by a hand or robot. Each detected boundary is printed and, with
--events, published to Kafka.

Examples:
  neemsim segment 1
  neemsim segment 1 --contact-distance 0.08
  neemsim segment 1 --events --brokers localhost:9092`

const segmentShortDesc string = "Detect action boundaries in an episode's motion"

func NewSegmentCmd() *cobra.Command {
	cmder := &segmentCommander{}

	cmd := &cobra.Command{
		Use:   "segment <episode-sql-id>",
		Short: segmentShortDesc,
		Long:  segmentLongDesc,
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
			config.BindRegisteredFlags(v, cmd, segmentFlags, segmentFlagKeys)

			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresURL = v.GetString("storage.postgres_url")
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

	config.AddStringFlag(cmd, segmentFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, segmentFlags, config.FlagPostgres, &cmder.postgresURL)
	config.AddStringSliceFlag(cmd, segmentFlags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, segmentFlags, config.FlagTopic, &cmder.topic)
	config.AddBoolFlag(cmd, segmentFlags, config.FlagEventsOn, &cmder.eventsOn)
	cmd.Flags().Float64Var(&cmder.distance, "contact-distance", segment.DefaultContactDistance,
		"Distance in meters under which two objects count as touching")

	return cmd
}

func (c *segmentCommander) run(ctx context.Context, episodeSQLID int64) error {
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

	publisher := c.newPublisher(log)
	defer publisher.Close()

	segmenter := segment.NewSegmenter(
		neemquery.NewInterface(conn, neemquery.WithInterfaceLogger(log)),
		segment.WithSegmentPublisher(publisher),
		segment.WithSegmenterLogger(log),
		segment.WithDetectorOptions(segment.WithContactDistance(c.distance)),
	)

	detected, err := segmenter.Segment(ctx, episodeSQLID)
	if err != nil {
		return fmt.Errorf("segmenting episode %d: %w", episodeSQLID, err)
	}

	if len(detected) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("No boundaries detected in episode %d.", episodeSQLID)))
		return nil
	}

	fmt.Println()
	for _, ev := range detected {
		switch ev.Type {
		case segment.EventPickUp:
			fmt.Printf("  %8.2fs  %s %s picked up by %s\n",
				ev.End, cliui.KeyStyle.Render(string(ev.Type)),
				cliui.NameStyle.Render(ev.Object), cliui.NameStyle.Render(ev.Other))
		default:
			fmt.Printf("  %8.2fs  %s %s and %s\n",
				ev.Begin, cliui.KeyStyle.Render(string(ev.Type)),
				cliui.NameStyle.Render(ev.Object), cliui.NameStyle.Render(ev.Other))
		}
	}
	fmt.Printf("\n  %s %d boundaries in episode %d\n\n", cliui.SuccessMark, len(detected), episodeSQLID)
	return nil
}

func (c *segmentCommander) newPublisher(log *slog.Logger) events.Publisher {
	if !c.eventsOn {
		return nop.NewPublisher()
	}
	log.Info("publishing boundary events", "brokers", c.brokers, "topic", c.topic)
	return kafka.NewPublisher(c.brokers, c.topic, kafka.WithLogger(log))
}

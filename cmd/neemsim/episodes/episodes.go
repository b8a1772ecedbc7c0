// Package episodescmder provides the episodes command for listing the
// recorded episodes of a NEEM database.
package episodescmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knowrobco/neemsim/cmd/neemsim/dbtarget"
	"github.com/knowrobco/neemsim/pkg/cliui"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/storage"
	"github.com/knowrobco/neemsim/pkg/utils"
)

type episodesCommander struct {
	sqlitePath  string
	postgresURL string
	task        string
	debug       bool
}

const episodesLongDesc string = `List the recorded episodes of the episode database.

Shows the episode index with SQL ids, names, and creators. With --task,
only episodes that executed a matching task type are shown (matched as a
substring, e.g. "Pour" matches soma:Pouring).

Examples:
  neemsim episodes
  neemsim episodes --task Pour
  neemsim episodes --sqlite /data/neems.sqlite`

const episodesShortDesc string = "List recorded episodes"

func NewEpisodesCmd() *cobra.Command {
	cmder := &episodesCommander{}

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: episodesShortDesc,
		Long:  episodesLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite episode database")
	cmd.Flags().StringVarP(&cmder.postgresURL, "postgres", "p", "", "PostgreSQL episode database URL")
	cmd.Flags().StringVarP(&cmder.task, "task", "t", "", "Only episodes containing a matching task type")

	return cmd
}

func (c *episodesCommander) run(ctx context.Context) error {
	url, err := dbtarget.Resolve(c.sqlitePath, c.postgresURL)
	if err != nil {
		return err
	}

	conn, err := storage.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("opening episode database: %w", err)
	}
	defer conn.Close()

	iface := neemquery.NewInterface(conn,
		neemquery.WithInterfaceLogger(logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))))

	res, err := iface.Episodes(ctx)
	if err != nil {
		return fmt.Errorf("listing episodes: %w", err)
	}

	var containing map[string]struct{}
	if c.task != "" {
		matches, err := iface.EpisodesContainingTask(ctx, c.task, true)
		if err != nil {
			return fmt.Errorf("matching episodes by task: %w", err)
		}
		containing = make(map[string]struct{})
		for _, id := range matches.EpisodeIDs(true) {
			containing[id] = struct{}{}
		}
	}

	sqlIDs := res.Strings(neem.ColEpisodeSQLID, false)
	ids := res.EpisodeIDs(false)
	names := res.Strings("name", false)
	creators := res.Strings("created_by", false)
	descriptions := res.Strings("description", false)

	shown := 0
	fmt.Println()
	for i := 0; i < res.Len(); i++ {
		if containing != nil {
			if _, ok := containing[ids[i]]; !ok {
				continue
			}
		}
		shown++

		name := names[i]
		if name == "" {
			name = ids[i]
		}

		line := fmt.Sprintf("  %s  %s",
			cliui.KeyStyle.Render(fmt.Sprintf("%4s", sqlIDs[i])),
			cliui.NameStyle.Render(name),
		)
		if creators[i] != "" {
			line += "  " + cliui.DimStyle.Render("by "+creators[i])
		}
		if descriptions[i] != "" {
			line += "  " + cliui.DimStyle.Render(utils.Truncate(descriptions[i], 48))
		}
		fmt.Println(line)
	}

	if shown == 0 {
		msg := "No episodes found."
		if c.task != "" {
			msg = "No episodes containing task " + strings.TrimSpace(c.task) + "."
		}
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render(msg))
		return nil
	}

	fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%d episode(s)", shown)))
	return nil
}

// Package taskscmder provides the tasks command, which prints the
// executed task sequence or the full recorded plan of an episode.
package taskscmder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knowrobco/neemsim/cmd/neemsim/dbtarget"
	"github.com/knowrobco/neemsim/pkg/cliui"
	"github.com/knowrobco/neemsim/pkg/logger"
	"github.com/knowrobco/neemsim/pkg/neem"
	"github.com/knowrobco/neemsim/pkg/neemquery"
	"github.com/knowrobco/neemsim/pkg/storage"
)

type tasksCommander struct {
	sqlitePath  string
	postgresURL string
	plan        bool
	debug       bool
}

const tasksLongDesc string = `Show the task sequence of a recorded episode.

Prints every executed task with its type and time interval, ordered by
start time. With --plan, subtasks, participants, and task parameters are
included, enough to reconstruct the recorded plan.

Examples:
  neemsim tasks 1
  neemsim tasks 1 --plan
  neemsim tasks 1 --sqlite /data/neems.sqlite`

const tasksShortDesc string = "Show the task sequence of an episode"

func NewTasksCmd() *cobra.Command {
	cmder := &tasksCommander{}

	cmd := &cobra.Command{
		Use:   "tasks <episode-sql-id>",
		Short: tasksShortDesc,
		Long:  tasksLongDesc,
		Args:  cobra.ExactArgs(1),
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

	cmd.Flags().StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Path to SQLite episode database")
	cmd.Flags().StringVarP(&cmder.postgresURL, "postgres", "p", "", "PostgreSQL episode database URL")
	cmd.Flags().BoolVar(&cmder.plan, "plan", false, "Include subtasks, participants, and parameters")

	return cmd
}

func (c *tasksCommander) run(ctx context.Context, episodeSQLID int64) error {
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

	var res *neem.Result
	if c.plan {
		res, err = iface.PlanOfEpisode(ctx, episodeSQLID)
	} else {
		res, err = iface.TaskSequenceOfEpisode(ctx, episodeSQLID)
	}
	if err != nil {
		return fmt.Errorf("querying tasks of episode %d: %w", episodeSQLID, err)
	}

	if res.Len() == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("No tasks recorded for episode %d.", episodeSQLID)))
		return nil
	}

	md := c.renderTable(episodeSQLID, res)
	out, err := cliui.RenderMarkdown(md)
	if err != nil {
		// Fall back to the raw markdown when the terminal renderer fails.
		fmt.Println(md)
		return nil
	}
	fmt.Print(out)
	return nil
}

func (c *tasksCommander) renderTable(episodeSQLID int64, res *neem.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Episode %d\n\n", episodeSQLID)

	tasks := res.Tasks(false)
	types := res.TaskTypes(false)
	begins := res.IntervalBegins()
	ends := res.IntervalEnds()

	if c.plan {
		subtasks := res.Subtasks(false)
		subtaskTypes := res.SubtaskTypes(false)
		participants := res.Participants(false)
		parameters := res.TaskParameters(false)

		b.WriteString("| Task | Type | Subtask | Subtask Type | Participant | Parameter | Begin | End |\n")
		b.WriteString("|------|------|---------|--------------|-------------|-----------|-------|-----|\n")
		for i := range tasks {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %.2f | %.2f |\n",
				tasks[i], types[i], subtasks[i], subtaskTypes[i],
				participants[i], parameters[i], begins[i], ends[i])
		}
	} else {
		b.WriteString("| Task | Type | Begin | End |\n")
		b.WriteString("|------|------|-------|-----|\n")
		for i := range tasks {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %.2f |\n",
				tasks[i], types[i], begins[i], ends[i])
		}
	}

	fmt.Fprintf(&b, "\n%d row(s)\n", res.Len())
	return b.String()
}

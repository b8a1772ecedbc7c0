// Package neemsimcmder provides the root neemsim cobra command.
package neemsimcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/knowrobco/neemsim/cmd/neemsim/config"
	episodescmder "github.com/knowrobco/neemsim/cmd/neemsim/episodes"
	initcmder "github.com/knowrobco/neemsim/cmd/neemsim/init"
	redocmder "github.com/knowrobco/neemsim/cmd/neemsim/redo"
	replaycmder "github.com/knowrobco/neemsim/cmd/neemsim/replay"
	segmentcmder "github.com/knowrobco/neemsim/cmd/neemsim/segment"
	servecmder "github.com/knowrobco/neemsim/cmd/neemsim/serve"
	taskscmder "github.com/knowrobco/neemsim/cmd/neemsim/tasks"
	versioncmder "github.com/knowrobco/neemsim/cmd/version"
)

const neemsimLongDesc string = `Neemsim replays recorded robot episodes from a NEEM database.

Browse the episode index, replay recorded motion against a scene, or
redo recorded plans as abstract simulator actions:
  neemsim episodes          List recorded episodes
  neemsim tasks <id>        Show the task sequence of an episode
  neemsim replay <id>       Replay the recorded motion of an episode
  neemsim segment <id>      Detect action boundaries in an episode
  neemsim redo plan <id>    Redo the recorded plan of an episode
  neemsim serve api         Run the episode API server`

const neemsimShortDesc string = "Neemsim - Episode Replay"

func NewNeemsimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neemsim",
		Short: neemsimShortDesc,
		Long:  neemsimLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .neemsim/ directory location")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(episodescmder.NewEpisodesCmd())
	cmd.AddCommand(taskscmder.NewTasksCmd())
	cmd.AddCommand(replaycmder.NewReplayCmd())
	cmd.AddCommand(segmentcmder.NewSegmentCmd())
	cmd.AddCommand(redocmder.NewRedoCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

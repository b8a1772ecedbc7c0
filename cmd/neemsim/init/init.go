// Package initcmder provides the init command for initializing a local
// .neemsim directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knowrobco/neemsim/pkg/config"
)

const (
	dirName = ".neemsim"
)

const initLongDesc string = `Initialize a new .neemsim/ directory in the current working directory.

Creates a local .neemsim/ directory that takes precedence over the default
~/.neemsim/ directory for configuration, session state, and downloaded
mesh data.

This is useful for maintaining separate neemsim state per project or
database. With --preset, a config.toml is written for a storage preset
(sqlite or postgres).

Examples:
  neemsim init
  neemsim init --preset sqlite
  neemsim init --preset postgres`

const initShortDesc string = "Initialize a local .neemsim/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "",
		"Write a config.toml for a storage preset ("+strings.Join(config.ValidPresetNames(), ", ")+")")

	return cmd
}

func runInit(preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Printf("Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .neemsim directory: %w", err)
		}
		fmt.Printf("Initialized .neemsim directory: %s\n", dir)
	}

	if preset == "" {
		return nil
	}

	cfg, err := config.PresetConfig(preset)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote %s preset config: %s\n", preset, cfger.GetTarget())
	return nil
}

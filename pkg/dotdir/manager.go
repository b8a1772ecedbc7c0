// Package dotdir manages the .neemsim/ and ~/.neemsim directories.
//
// The directory holds the config.toml file, the session state for resuming
// replays, and downloaded mesh data under data/.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the neemsim directory.
	dirName = ".neemsim"

	// dataDirName is the subdirectory for downloaded mesh and scene files.
	dataDirName = "data"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .neemsim/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.neemsim/ dir
//  3. Home ~/.neemsim/ dir
//  4. If none found, attempt to create ~/.neemsim/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating neemsim directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// DataDir returns the absolute path to the data/ subdirectory of the resolved
// .neemsim/ directory, creating it if needed. Downloaded meshes land here.
func (m *Manager) DataDir(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, dataDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDirExists checks whether a .neemsim/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}

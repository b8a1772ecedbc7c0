// Package dbtarget resolves which episode database a CLI command should
// open, from flags, environment variables, and well-known file locations.
package dbtarget

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns the database URL to open. A PostgreSQL override or
// environment URL wins over any SQLite path; when nothing is configured
// the well-known SQLite file locations are probed.
func Resolve(sqliteOverride, postgresOverride string) (string, error) {
	if postgresOverride != "" {
		return postgresOverride, nil
	}

	if envURL := strings.TrimSpace(os.Getenv("NEEMSIM_POSTGRES")); envURL != "" {
		return envURL, nil
	}

	if sqliteOverride != "" {
		return sqliteOverride, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("NEEMSIM_SQLITE")); envPath != "" {
		return envPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv("NEEMSIM_DB")); envPath != "" {
		return envPath, nil
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.New("could not find an episode database; pass --sqlite or --postgres")
}

func sqliteCandidates() []string {
	candidates := []string{
		"neems.db",
		"neems.sqlite",
		filepath.Join(".neemsim", "neems.db"),
		filepath.Join(".neemsim", "neems.sqlite"),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append([]string{
			filepath.Join(home, ".neemsim", "neems.db"),
			filepath.Join(home, ".neemsim", "neems.sqlite"),
		}, candidates...)
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append([]string{
			filepath.Join(xdgHome, "neemsim", "neems.db"),
			filepath.Join(xdgHome, "neemsim", "neems.sqlite"),
		}, candidates...)
	}

	return candidates
}

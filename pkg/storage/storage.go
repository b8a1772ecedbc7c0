// Package storage opens connections to relational episode stores. A
// store is either a local SQLite file, used for development and tests,
// or a PostgreSQL server carrying a full episode dump.
package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/knowrobco/neemsim/pkg/storage/postgres"
	"github.com/knowrobco/neemsim/pkg/storage/sqlite"
)

// Conn is an open connection to an episode store.
type Conn interface {
	// DB returns the underlying database handle.
	DB() *sql.DB

	// Dialect names the SQL dialect of the connection.
	Dialect() string

	// Close closes the connection and releases any resources.
	Close() error
}

// Open dispatches on the URL. PostgreSQL URLs and DSNs go to the
// postgres driver; everything else is treated as a SQLite path, with an
// optional sqlite:// prefix.
func Open(ctx context.Context, url string) (Conn, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"),
		strings.HasPrefix(url, "postgresql://"),
		strings.HasPrefix(url, "host="):
		return postgres.Open(ctx, url)
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://"))
	default:
		return sqlite.Open(url)
	}
}

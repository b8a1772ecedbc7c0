// Package postgres provides a PostgreSQL-backed episode store
// connection. Unlike the sqlite driver it never creates schema; it
// expects a server already loaded with an episode dump.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	_ "github.com/jackc/pgx/v5/stdlib" // register the pgx PostgreSQL driver as "pgx"
)

// Conn is a PostgreSQL episode store connection.
type Conn struct {
	db *sql.DB
}

// Open connects to the server at connStr, which is a PostgreSQL
// connection string, e.g.
// "host=localhost port=5432 user=neem dbname=neems sslmode=disable"
// or a connection URI like "postgres://neem@localhost:5432/neems".
func Open(ctx context.Context, connStr string) (*Conn, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify the connection is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Conn{db: db}, nil
}

// DB returns the underlying database handle.
func (c *Conn) DB() *sql.DB { return c.db }

// Dialect names the SQL dialect of the connection.
func (c *Conn) Dialect() string { return dialect.Postgres }

// Close closes the connection.
func (c *Conn) Close() error { return c.db.Close() }

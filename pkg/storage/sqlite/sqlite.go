// Package sqlite provides a SQLite-backed episode store connection.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	_ "github.com/mattn/go-sqlite3"
)

// Conn is a SQLite episode store connection.
type Conn struct {
	db *sql.DB
}

// Open opens the database at path, which can be a file path or
// ":memory:" for an in-memory database. The episode schema is created
// when missing, so a fresh file is immediately queryable.
func Open(path string) (*Conn, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must
	// stay at one connection or queries would see empty databases.
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Conn{db: db}, nil
}

// DB returns the underlying database handle.
func (c *Conn) DB() *sql.DB { return c.db }

// Dialect names the SQL dialect of the connection.
func (c *Conn) Dialect() string { return dialect.SQLite }

// Close closes the connection.
func (c *Conn) Close() error { return c.db.Close() }

// Package sqlitetree is a durable single-node tree.Store on SQLite. Each
// record is one row keyed by its full path, with the parent path indexed so
// child listings are a range scan.
package sqlitetree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
)

const driverName = "sqlite"

// Store is a SQLite-backed tree.Store.
type Store struct {
	db *sql.DB
}

var _ tree.Store = (*Store)(nil)

// Open opens (or creates) the database at dsn and migrates the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// SQLite serializes writers; one connection keeps PutIfAbsent atomic and
	// keeps ":memory:" databases from splitting per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating sqlite: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	queries := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS nodes (
			path   TEXT PRIMARY KEY,
			parent TEXT NOT NULL,
			key    TEXT NOT NULL,
			value  BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS nodes_parent ON nodes(parent, key)`,
	}

	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("executing %q: %w", firstLine(q), err)
		}
	}

	return nil
}

// Get returns the record at path, or nil when absent.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	var value []byte

	err := s.db.QueryRowContext(ctx, `SELECT value FROM nodes WHERE path = ?`, path).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("selecting %s: %w", path, err)
	}

	return value, nil
}

// Children returns direct child records of path sorted by key.
func (s *Store) Children(ctx context.Context, path string) ([]tree.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM nodes WHERE parent = ? ORDER BY key`, path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	defer rows.Close()

	var out []tree.Entry

	for rows.Next() {
		var e tree.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", path, err)
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	return out, nil
}

// Put upserts the record at path.
func (s *Store) Put(ctx context.Context, path string, value []byte) error {
	parent, key := tree.Split(path)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (path, parent, key, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET value = excluded.value`,
		path, parent, key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// PutIfAbsent inserts the record only when path has none.
func (s *Store) PutIfAbsent(ctx context.Context, path string, value []byte) (bool, error) {
	parent, key := tree.Split(path)

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO nodes (path, parent, key, value) VALUES (?, ?, ?, ?)`,
		path, parent, key, value)
	if err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}

	return n == 1, nil
}

// Delete removes path and every descendant.
func (s *Store) Delete(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM nodes WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		path, escapeLike(path)+"/%")
	if err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}

	return nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func firstLine(q string) string {
	line, _, _ := strings.Cut(q, "\n")
	return strings.TrimSpace(line)
}

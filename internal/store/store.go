// Package store persists snapshots of registered fully-qualified names in
// SQLite so a registry can be warmed up from a previous run.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-set/v3"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS fqns (
	name     TEXT PRIMARY KEY,
	saved_at INTEGER NOT NULL
)`

// Store is a SQLite-backed FQN snapshot.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Save replaces the snapshot with fqns.
func (s *Store) Save(ctx context.Context, fqns *set.Set[string]) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fqns`); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO fqns (name, saved_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	names := fqns.Slice()
	slices.Sort(names)
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, name, now); err != nil {
			return fmt.Errorf("saving %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Load returns the names of the last saved snapshot.
func (s *Store) Load(ctx context.Context) (*set.Set[string], error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM fqns`)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	defer rows.Close()

	fqns := set.New[string](0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		fqns.Insert(name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return fqns, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

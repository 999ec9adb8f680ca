// Package sqlite implements store.Store on an embedded SQLite database
// (pure Go driver, no cgo).
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/family"
	kio "github.com/matzehuels/kinship/pkg/io"
	"github.com/matzehuels/kinship/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS families (
	name       TEXT PRIMARY KEY,
	document   TEXT    NOT NULL,
	people     INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store keeps each family as a JSON document in one row.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dsn. Use ":memory:" for a
// throwaway database.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// One connection serialises writers and keeps a :memory: database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: init: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(ctx context.Context, name string, data family.Data) error {
	if err := kerrors.ValidateFamilyName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := kio.Write(&buf, data, kio.FormatJSON); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO families (name, document, people, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			people = excluded.people,
			updated_at = excluded.updated_at`,
		name, buf.String(), len(data.Individuals), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("sqlite: save %q: %w", name, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, name string) (family.Data, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM families WHERE name = ?`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return family.Data{}, store.NotFound(name)
	}
	if err != nil {
		return family.Data{}, fmt.Errorf("sqlite: load %q: %w", name, err)
	}
	return kio.Read(bytes.NewBufferString(doc), kio.FormatJSON)
}

func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, people, updated_at FROM families ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		var sum store.Summary
		var updated int64
		if err := rows.Scan(&sum.Name, &sum.People, &updated); err != nil {
			return nil, fmt.Errorf("sqlite: list: %w", err)
		}
		sum.UpdatedAt = time.Unix(0, updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM families WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("sqlite: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete %q: %w", name, err)
	}
	if n == 0 {
		return store.NotFound(name)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)

// Package registry persists read descriptors in SQLite.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flickread/flick/internal/source"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound reports a read name with no registry entry.
var ErrNotFound = errors.New("read not found")

// Store wraps SQLite access for the read registry.
type Store struct {
	db *sql.DB
}

// Open opens or creates the registry database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reads (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			locator TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_accessed TEXT NOT NULL,
			completion REAL NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reads_last_accessed ON reads(last_accessed);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Add registers a new read. The name must be unique.
func (s *Store) Add(ctx context.Context, desc source.Descriptor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reads (name, kind, locator, created_at, last_accessed, completion)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		desc.Name,
		desc.Kind.String(),
		desc.Locator,
		desc.CreatedAt.Format(time.RFC3339Nano),
		desc.LastAccessed.Format(time.RFC3339Nano),
		clamp01(desc.Completion),
	)
	if err != nil {
		return fmt.Errorf("add read %q: %w", desc.Name, err)
	}
	return nil
}

// Get returns the descriptor registered under name.
func (s *Store) Get(ctx context.Context, name string) (source.Descriptor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, kind, locator, created_at, last_accessed, completion
		 FROM reads WHERE name = ?`, name)
	desc, err := scanDescriptor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return source.Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return desc, err
}

// List returns all reads, most recently accessed first.
func (s *Store) List(ctx context.Context) ([]source.Descriptor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, locator, created_at, last_accessed, completion
		 FROM reads ORDER BY last_accessed DESC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []source.Descriptor
	for rows.Next() {
		desc, err := scanDescriptor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, rows.Err()
}

// Delete removes the read registered under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reads WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// UpdateCompletion stores the session-end completion ratio, clamped to [0,1].
func (s *Store) UpdateCompletion(ctx context.Context, name string, ratio float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reads SET completion = ? WHERE name = ?`, clamp01(ratio), name)
	return err
}

// UpdateLastAccessed stamps the read with its most recent session time.
func (s *Store) UpdateLastAccessed(ctx context.Context, name string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reads SET last_accessed = ? WHERE name = ?`, now.Format(time.RFC3339Nano), name)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDescriptor(row rowScanner) (source.Descriptor, error) {
	var desc source.Descriptor
	var kind, created, accessed string
	if err := row.Scan(&desc.Name, &kind, &desc.Locator, &created, &accessed, &desc.Completion); err != nil {
		return source.Descriptor{}, err
	}
	k, err := source.ParseKind(kind)
	if err != nil {
		return source.Descriptor{}, err
	}
	desc.Kind = k
	if desc.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return source.Descriptor{}, err
	}
	if desc.LastAccessed, err = time.Parse(time.RFC3339Nano, accessed); err != nil {
		return source.Descriptor{}, err
	}
	return desc, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

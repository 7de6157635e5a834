package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE documents (id TEXT PRIMARY KEY, lines TEXT);`

const defaultBatchSize = 500

// ErrExists is returned by Create when the target file is already present
var ErrExists = errors.New("document store already exists")

// Document is one row of the store
type Document struct {
	ID    string `db:"id" json:"id"`
	Lines string `db:"lines" json:"lines"`
}

// Lookup is the read contract of the document store. A missing id is not an
// error: GetLines reports it with found=false and GetManyLines omits it.
type Lookup interface {
	GetLines(ctx context.Context, id string) (lines string, found bool, err error)
	GetManyLines(ctx context.Context, ids []string) (map[string]string, error)
}

// Store is a SQLite-backed document table
type Store struct {
	db        *sqlx.DB
	path      string
	batchSize int
}

// Normalize maps a page id into the store's key space (Unicode NFD). NFD is
// idempotent, so already-normalised ids map to themselves.
func Normalize(id string) string {
	return norm.NFD.String(id)
}

// Open opens an existing store for reading
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	return open(path)
}

// Create creates a new empty store. It refuses to overwrite an existing file.
func Create(path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	s, err := open(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(schema); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{db: db, path: path, batchSize: defaultBatchSize}, nil
}

// SetBatchSize bounds the number of ids bound into one IN (...) query
func (s *Store) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Path returns the file backing the store
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// GetLines fetches the lines blob of one document
func (s *Store) GetLines(ctx context.Context, id string) (string, bool, error) {
	var lines sql.NullString
	err := s.db.QueryRowxContext(ctx, `SELECT lines FROM documents WHERE id = ?`, Normalize(id)).Scan(&lines)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get lines %q: %w", id, err)
	}
	return lines.String, true, nil
}

// GetManyLines fetches several documents. Keys of the result are normalised
// ids; ids not in the store are absent.
func (s *Store) GetManyLines(ctx context.Context, ids []string) (map[string]string, error) {
	keys := uniqueNormalized(ids)
	out := make(map[string]string, len(keys))

	for start := 0; start < len(keys); start += s.batchSize {
		end := min(start+s.batchSize, len(keys))

		query, args, err := sqlx.In(`SELECT id, COALESCE(lines, '') AS lines FROM documents WHERE id IN (?)`, keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("build batch query: %w", err)
		}

		var docs []Document
		if err := s.db.SelectContext(ctx, &docs, s.db.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("get many lines: %w", err)
		}
		for _, d := range docs {
			out[d.ID] = d.Lines
		}
	}

	return out, nil
}

// InsertMany writes documents in a single transaction. Ids are normalised
// here; a duplicate id fails the whole batch.
func (s *Store) InsertMany(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO documents (id, lines) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, Normalize(d.ID), d.Lines); err != nil {
			return fmt.Errorf("insert %q: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DocIDs returns every id in the store
func (s *Store) DocIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM documents`); err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	return ids, nil
}

// Count returns the number of documents
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM documents`); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func uniqueNormalized(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		k := Normalize(id)
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

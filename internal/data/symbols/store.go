// Package symbols keeps a SQLite index of the declarations of every document
// the server has seen, backing workspace-wide symbol search.
package symbols

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	_ "modernc.org/sqlite"

	"cstyle/internal/core/errors"
	"cstyle/internal/engine/lang"
	"cstyle/internal/shared/observability"
)

// DefaultLimit caps Search results when the caller passes no limit.
const DefaultLimit = 100

const schemaVersion = 1

type Store struct {
	db *sql.DB

	mu      sync.Mutex
	digests map[string]uint64
}

// Open opens or creates the index at path.
func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New(errors.CodeValidationError, "symbol index path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create symbol index directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "open symbol index"), errors.CtxPath, cleanPath)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping symbol index: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, digests: make(map[string]uint64)}
	if err := s.loadDigests(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func migrate(db *sql.DB) error {
	var version int
	_ = db.QueryRow(`PRAGMA user_version`).Scan(&version)
	if version >= schemaVersion {
		return nil
	}
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
  uri TEXT PRIMARY KEY,
  digest INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS symbols (
  uri TEXT NOT NULL REFERENCES documents(uri) ON DELETE CASCADE,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  container TEXT NOT NULL DEFAULT '',
  detail TEXT NOT NULL DEFAULT '',
  start_line INTEGER NOT NULL,
  start_character INTEGER NOT NULL,
  end_line INTEGER NOT NULL,
  end_character INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_uri ON symbols(uri);
PRAGMA user_version = 1;
`)
	if err != nil {
		return fmt.Errorf("create symbol index schema: %w", err)
	}
	return nil
}

func (s *Store) loadDigests() error {
	rows, err := s.db.Query(`SELECT uri, digest FROM documents`)
	if err != nil {
		return fmt.Errorf("load document digests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var uri string
		var digest int64
		if err := rows.Scan(&uri, &digest); err != nil {
			return fmt.Errorf("scan document digest: %w", err)
		}
		s.digests[uri] = uint64(digest)
	}
	return rows.Err()
}

// Digest hashes entries in order. Two documents with the same declarations
// at the same places hash equal.
func Digest(entries []Entry) uint64 {
	h := xxhash.New()
	for _, e := range entries {
		_, _ = h.WriteString(e.Name)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(string(e.Kind))
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(e.Container)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(e.Detail)
		_, _ = h.WriteString("\x00")
		for _, n := range []int{e.Range.Start.Line, e.Range.Start.Character, e.Range.End.Line, e.Range.End.Character} {
			_, _ = h.WriteString(strconv.Itoa(n))
			_, _ = h.WriteString(",")
		}
	}
	return h.Sum64()
}

// Replace swaps the indexed entries of uri for entries. It reports false
// without touching the database when the entries are unchanged.
func (s *Store) Replace(ctx context.Context, uri string, entries []Entry) (bool, error) {
	digest := Digest(entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.digests[uri]; ok && prev == digest {
		observability.SymbolIndexWritesTotal.WithLabelValues("unchanged").Inc()
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		observability.SymbolIndexWritesTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("begin symbol index write: %w", err)
	}
	if err := replaceRows(ctx, tx, uri, digest, entries); err != nil {
		_ = tx.Rollback()
		observability.SymbolIndexWritesTotal.WithLabelValues("error").Inc()
		return false, errors.AddContext(err, errors.CtxURI, uri)
	}
	if err := tx.Commit(); err != nil {
		observability.SymbolIndexWritesTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("commit symbol index write: %w", err)
	}
	s.digests[uri] = digest
	observability.SymbolIndexWritesTotal.WithLabelValues("written").Inc()
	return true, nil
}

func replaceRows(ctx context.Context, tx *sql.Tx, uri string, digest uint64, entries []Entry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM symbols WHERE uri = ?`, uri); err != nil {
		return fmt.Errorf("delete symbol rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (uri, digest) VALUES (?, ?) ON CONFLICT(uri) DO UPDATE SET digest = excluded.digest`,
		uri, int64(digest)); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO symbols (uri, name, kind, container, detail, start_line, start_character, end_line, end_character)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			uri, e.Name, string(e.Kind), e.Container, e.Detail,
			e.Range.Start.Line, e.Range.Start.Character, e.Range.End.Line, e.Range.End.Character,
		); err != nil {
			return fmt.Errorf("insert symbol row %q: %w", e.Name, err)
		}
	}
	return nil
}

// Delete drops every entry of uri.
func (s *Store) Delete(ctx context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE uri = ?`, uri); err != nil {
		return fmt.Errorf("delete document %q: %w", uri, err)
	}
	delete(s.digests, uri)
	return nil
}

// Search returns entries whose name contains query, ignoring ASCII case,
// ordered by name. An empty query matches everything.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
SELECT uri, name, kind, container, detail, start_line, start_character, end_line, end_character
FROM symbols
WHERE name LIKE ? ESCAPE '\'
ORDER BY name, uri, start_line, start_character
LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search symbols: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var kind string
		if err := rows.Scan(&m.URI, &m.Name, &kind, &m.Container, &m.Detail,
			&m.Range.Start.Line, &m.Range.Start.Character, &m.Range.End.Line, &m.Range.End.Character); err != nil {
			return nil, fmt.Errorf("scan symbol row: %w", err)
		}
		m.Kind = Kind(kind)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Index extracts and stores the entries of state.
func (s *Store) Index(ctx context.Context, state *lang.ParseState) (bool, error) {
	return s.Replace(ctx, state.URI, EntriesFrom(state))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

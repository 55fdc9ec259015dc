// Package records persists submitted audit notes in an append-only SQLite
// table. Rows are only ever inserted; nothing in this package updates or
// deletes them.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrStorageUnavailable wraps every failure to open, read or write the
// durable store. Callers report it to the user; nothing is retried.
var ErrStorageUnavailable = errors.New("records: storage unavailable")

// DefaultPath is the store file used when nothing else is configured.
const DefaultPath = "riskaudit.db"

const tableName = "audit_data"

// Column names match the original riskaudit.db so existing files keep
// working.
const schema = `
CREATE TABLE IF NOT EXISTS audit_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	position TEXT,
	stage TEXT,
	requirements TEXT,
	performed_work TEXT,
	problems TEXT,
	results TEXT
)`

const (
	insertQuery = `INSERT INTO audit_data (name, position, stage, requirements, performed_work, problems, results)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	selectAllQuery = `SELECT id, name, position, stage, requirements, performed_work, problems, results
FROM audit_data ORDER BY id ASC`
	countQuery = `SELECT COUNT(*) FROM audit_data`
)

// Draft is a record that has not been stored yet.
type Draft struct {
	AuditorName     string `json:"auditor_name" yaml:"auditor_name"`
	AuditorPosition string `json:"auditor_position" yaml:"auditor_position"`
	Stage           string `json:"stage" yaml:"stage"`
	Requirements    string `json:"requirements" yaml:"requirements"`
	PerformedWork   string `json:"performed_work" yaml:"performed_work"`
	Problems        string `json:"problems" yaml:"problems"`
	Results         string `json:"results" yaml:"results"`
}

// Record is a stored submission. ID is assigned by the store.
type Record struct {
	ID    int64 `json:"id" yaml:"id"`
	Draft `yaml:",inline"`
}

// Store is the append-only audit table.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the SQLite file at path and ensures the
// audit table exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, unavailable("create directory", err)
		}
	}
	db, err := sql.Open("sqlite", dataSourceName(path))
	if err != nil {
		return nil, unavailable("open", err)
	}
	// One connection keeps inserts strictly serialized at the driver level.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("open", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, unavailable("create table", err)
	}
	return &Store{db: db, path: path}, nil
}

// uriPathEscaper escapes the characters SQLite would read as URI syntax in a
// file: name.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func dataSourceName(path string) string {
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "synchronous(FULL)")
	return "file:" + uriPathEscaper.Replace(path) + "?" + params.Encode()
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Insert appends a record and returns its id. The row is committed before
// Insert returns.
func (s *Store) Insert(ctx context.Context, draft Draft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, unavailable("insert", errClosed)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, unavailable("begin insert", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, insertQuery,
		draft.AuditorName,
		draft.AuditorPosition,
		draft.Stage,
		draft.Requirements,
		draft.PerformedWork,
		draft.Problems,
		draft.Results,
	)
	if err != nil {
		return 0, unavailable("insert", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, unavailable("insert id", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, unavailable("commit insert", err)
	}
	return id, nil
}

// FetchAll returns every stored record in ascending id order.
func (s *Store) FetchAll(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, unavailable("fetch", errClosed)
	}
	rows, err := s.db.QueryContext(ctx, selectAllQuery)
	if err != nil {
		return nil, unavailable("fetch", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec    Record
			fields [7]sql.NullString
		)
		if err := rows.Scan(&rec.ID, &fields[0], &fields[1], &fields[2], &fields[3], &fields[4], &fields[5], &fields[6]); err != nil {
			return nil, unavailable("scan", err)
		}
		rec.AuditorName = fields[0].String
		rec.AuditorPosition = fields[1].String
		rec.Stage = fields[2].String
		rec.Requirements = fields[3].String
		rec.PerformedWork = fields[4].String
		rec.Problems = fields[5].String
		rec.Results = fields[6].String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("fetch", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, unavailable("count", errClosed)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&n); err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}

// Close flushes and releases the database handle. It is safe to call more
// than once.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return unavailable("close", err)
	}
	return nil
}

var errClosed = errors.New("store is closed")

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrStorageUnavailable, op, tableName, err)
}

// Package joblog provides a SQLite-backed record of style operations.
package joblog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	operation  TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT '',
	target     TEXT NOT NULL DEFAULT '',
	styles     INTEGER NOT NULL DEFAULT 0,
	removed    INTEGER NOT NULL DEFAULT 0,
	status     TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
`

// Job is one recorded style operation.
type Job struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	Source    string    `json:"source,omitempty"`
	Target    string    `json:"target,omitempty"`
	Styles    int       `json:"styles"`
	Removed   int       `json:"removed"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Log defines the interface for job recording. Consumers should
// depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type Log interface {
	Record(j Job) error
	Recent(limit int) ([]Job, error)
	Close() error
}

// Verify *DB satisfies Log at compile time.
var _ Log = (*DB)(nil)

// DB wraps a sql.DB with job-log operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("joblog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("joblog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("joblog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record inserts one job row. CreatedAt is taken from the database
// clock, not from j.
func (db *DB) Record(j Job) error {
	_, err := db.conn.Exec(`
		INSERT INTO jobs (operation, source, target, styles, removed, status, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, j.Operation, j.Source, j.Target, j.Styles, j.Removed, j.Status, j.Detail)
	if err != nil {
		return fmt.Errorf("joblog: record: %w", err)
	}
	return nil
}

// Recent returns the newest jobs, newest first.
func (db *DB) Recent(limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, operation, source, target, styles, removed, status, detail, created_at
		FROM jobs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("joblog: recent: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Operation, &j.Source, &j.Target, &j.Styles, &j.Removed, &j.Status, &j.Detail, &j.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Discard is a Log that keeps nothing, for configurations without a
// job database.
type Discard struct{}

func (Discard) Record(Job) error          { return nil }
func (Discard) Recent(int) ([]Job, error) { return nil, nil }
func (Discard) Close() error              { return nil }

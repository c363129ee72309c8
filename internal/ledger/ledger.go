// Package ledger keeps a SQLite history of every examination run: which
// evidence went in, a hash of the model, and what came out.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // register sqlite driver
)

// Run statuses.
const (
	StatusOK           = "ok"
	StatusEmptyMessage = "empty_message"
	StatusFailed       = "failed"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    started_at    TEXT NOT NULL,
    output_dir    TEXT NOT NULL DEFAULT '',
    model_path    TEXT NOT NULL DEFAULT '',
    model_sha256  TEXT NOT NULL DEFAULT '',
    vocab_path    TEXT NOT NULL DEFAULT '',
    message_path  TEXT NOT NULL DEFAULT '',
    trie_offset   INTEGER NOT NULL DEFAULT 0,
    paths         INTEGER NOT NULL DEFAULT 0,
    matched       INTEGER NOT NULL DEFAULT 0,
    total         INTEGER NOT NULL DEFAULT 0,
    score         REAL NOT NULL DEFAULT 0,
    status        TEXT NOT NULL,
    error         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// startedAtLayout has a fixed width so started_at sorts as text.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one row of the history.
type Run struct {
	ID          string
	StartedAt   time.Time
	OutputDir   string
	ModelPath   string
	ModelSHA256 string
	VocabPath   string
	MessagePath string
	TrieOffset  int
	Paths       int
	Matched     int
	Total       int
	Score       float64
	Status      string
	Error       string
}

// Ledger is the SQLite-backed run history.
type Ledger struct {
	db      *sql.DB
	entropy *rand.Rand
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Ledger{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// NewID returns a sortable run ID for a run started at t.
func (l *Ledger) NewID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), l.entropy).String()
}

// Record stores a run, replacing any earlier row with the same ID.
func (l *Ledger) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = l.NewID(r.StartedAt)
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			id, started_at, output_dir, model_path, model_sha256, vocab_path, message_path,
			trie_offset, paths, matched, total, score, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(startedAtLayout), r.OutputDir,
		r.ModelPath, r.ModelSHA256, r.VocabPath, r.MessagePath,
		r.TrieOffset, r.Paths, r.Matched, r.Total, r.Score, r.Status, r.Error,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, started_at, output_dir, model_path, model_sha256, vocab_path, message_path,
		       trie_offset, paths, matched, total, score, status, error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.OutputDir, &r.ModelPath, &r.ModelSHA256,
			&r.VocabPath, &r.MessagePath, &r.TrieOffset, &r.Paths, &r.Matched, &r.Total,
			&r.Score, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(startedAtLayout, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

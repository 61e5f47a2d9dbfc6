// Package store is the embedded relational persistence layer backing
// change events, the indexing watermark, and user notes: a single
// sqlx.DB over mattn/go-sqlite3, WAL journaling for concurrent readers,
// and a writer mutex owned by each Store handle that serializes the
// writes made through that handle. Two handles opened on the same
// database file do not share the mutex.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spectra-g/engram/internal/errs"
	"github.com/spectra-g/engram/internal/logging"
)

// Store is the embedded database handle. It is safe for concurrent
// use: reads flow through sqlite's own MVCC-like WAL readers, writes
// serialize behind writerMu.
type Store struct {
	db       *sqlx.DB
	writerMu sync.Mutex
	log      *slog.Logger
}

// Open creates the schema on first use, enables WAL journaling, and
// returns a ready handle. Open is idempotent: calling it again against
// an existing database file is a no-op beyond re-running the
// CREATE TABLE IF NOT EXISTS statements.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.StorageError(err, "create database directory %s", dir)
	}

	db, err := sqlx.Connect("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errs.StorageError(err, "open sqlite database at %s", dbPath)
	}

	// The pool holds at most 8 connections, shared by readers and the
	// writer; writes are serialized by writerMu, not by this pool size.
	db.SetMaxOpenConns(8)

	s := &Store{db: db, log: logging.With("component", "store")}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS change_events (
		commit_id    TEXT NOT NULL,
		path         TEXT NOT NULL,
		committed_at INTEGER NOT NULL,
		author       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (commit_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_change_events_path ON change_events(path);
	CREATE INDEX IF NOT EXISTS idx_change_events_commit ON change_events(commit_id);

	CREATE TABLE IF NOT EXISTS watermark (
		repo_key         TEXT PRIMARY KEY,
		last_commit_id   TEXT NOT NULL,
		last_committed_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		path       TEXT NOT NULL,
		symbol     TEXT,
		content    TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notes_path ON notes(path);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return errs.StorageError(err, "initialize schema")
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tx brackets a write transaction. Callers must Commit or Rollback;
// the coordinator may hold one open across a long indexing batch while
// short analysis requests read through the pool unaffected because
// of WAL mode.
type Tx struct {
	tx    *sqlx.Tx
	store *Store
}

// Begin acquires this Store's writer lock and starts a transaction.
// The caller must always pair this with Commit or Rollback — Rollback
// also releases the writer lock.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	s.writerMu.Lock()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.writerMu.Unlock()
		return nil, errs.StorageError(err, "begin transaction")
	}
	return &Tx{tx: tx, store: s}, nil
}

// TryBegin attempts to acquire the writer lock without blocking. The
// second return value is false if some other write (typically a
// concurrent indexing pass) already holds it, in which case the first
// return value is nil and there is nothing to Commit or Rollback.
func (s *Store) TryBegin(ctx context.Context) (*Tx, bool, error) {
	if !s.writerMu.TryLock() {
		return nil, false, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.writerMu.Unlock()
		return nil, false, errs.StorageError(err, "begin transaction")
	}
	return &Tx{tx: tx, store: s}, true, nil
}

// Commit commits the transaction and releases the writer lock.
func (t *Tx) Commit() error {
	defer t.store.writerMu.Unlock()
	if err := t.tx.Commit(); err != nil {
		return errs.StorageError(err, "commit transaction")
	}
	return nil
}

// Rollback rolls back the transaction and releases the writer lock.
// Rollback after Commit is not a no-op: Commit has already released
// the writer lock, and releasing it again panics.
func (t *Tx) Rollback() error {
	defer t.store.writerMu.Unlock()
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return errs.StorageError(err, "rollback transaction")
	}
	return nil
}

// InsertChangeEvent is idempotent on (commit_id, path): a duplicate
// insert is a no-op, never an error.
func (t *Tx) InsertChangeEvent(ctx context.Context, commitID, path string, ts time.Time, author string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO change_events (commit_id, path, committed_at, author) VALUES (?, ?, ?, ?)`,
		commitID, path, ts.Unix(), author)
	if err != nil {
		return errs.StorageError(err, "insert change event for %s@%s", path, commitID)
	}
	return nil
}

// RenamePath migrates every existing change_events row at oldPath onto
// newPath, so coupling history accumulated under a file's previous
// name keeps following it after a rename: renames collapse to the
// destination path, including history queried under that destination
// later on. Rows that would collide with an
// existing (commit_id, newPath) row are left under oldPath rather than
// dropped or erroring; that only happens if newPath was independently
// touched by the very same commit, which a rename cannot produce.
func (t *Tx) RenamePath(ctx context.Context, oldPath, newPath string) error {
	if oldPath == "" || oldPath == newPath {
		return nil
	}
	_, err := t.tx.ExecContext(ctx,
		`UPDATE change_events SET path = ? WHERE path = ? AND NOT EXISTS (
			SELECT 1 FROM change_events existing
			WHERE existing.commit_id = change_events.commit_id AND existing.path = ?
		)`,
		newPath, oldPath, newPath)
	if err != nil {
		return errs.StorageError(err, "migrate change events from %s to %s", oldPath, newPath)
	}
	return nil
}

// SetWatermark overwrites the single watermark row. Called exactly
// once per successful index batch.
func (t *Tx) SetWatermark(ctx context.Context, commitID string, ts time.Time) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO watermark (repo_key, last_commit_id, last_committed_at) VALUES (?, ?, ?)
		 ON CONFLICT(repo_key) DO UPDATE SET last_commit_id = excluded.last_commit_id,
		 last_committed_at = excluded.last_committed_at`,
		repoKey, commitID, ts.Unix())
	if err != nil {
		return errs.StorageError(err, "set watermark")
	}
	return nil
}

// GetWatermark returns nil (not an error) on a virgin database.
func (s *Store) GetWatermark(ctx context.Context) (*Watermark, error) {
	var row struct {
		LastCommitID    string `db:"last_commit_id"`
		LastCommittedAt int64  `db:"last_committed_at"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT last_commit_id, last_committed_at FROM watermark WHERE repo_key = ?`, repoKey)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.StorageError(err, "get watermark")
	}
	return &Watermark{
		LastCommitID:    row.LastCommitID,
		LastCommittedAt: time.Unix(row.LastCommittedAt, 0).UTC(),
	}, nil
}

// CoChangeCounts enumerates, for every commit that touched targetPath,
// the other paths changed in the same commit, aggregated by co-change
// count and the most recent shared commit timestamp.
func (s *Store) CoChangeCounts(ctx context.Context, targetPath string) ([]CoChangeRow, error) {
	const q = `
		SELECT a.path AS path, COUNT(DISTINCT a.commit_id) AS count, MAX(a.committed_at) AS last_ts
		FROM change_events a
		JOIN change_events t ON t.commit_id = a.commit_id AND t.path = ?
		WHERE a.path != ?
		GROUP BY a.path
	`
	var rows []struct {
		Path    string `db:"path"`
		Count   int    `db:"count"`
		LastTS  int64  `db:"last_ts"`
	}
	if err := s.db.SelectContext(ctx, &rows, q, targetPath, targetPath); err != nil {
		return nil, errs.StorageError(err, "query co-change counts for %s", targetPath)
	}

	out := make([]CoChangeRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, CoChangeRow{
			Path:              r.Path,
			Count:             r.Count,
			LastCoCommittedAt: time.Unix(r.LastTS, 0).UTC(),
		})
	}
	return out, nil
}

// CommitCount returns the number of distinct commits touching path.
func (s *Store) CommitCount(ctx context.Context, path string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(DISTINCT commit_id) FROM change_events WHERE path = ?`, path)
	if err != nil {
		return 0, errs.StorageError(err, "count commits for %s", path)
	}
	return count, nil
}

// LastAuthorForPath returns the author of path's most recent change
// event, or "" if path has no recorded history. This is a diagnostic
// surfaced for human inspection only; nothing scores against it.
func (s *Store) LastAuthorForPath(ctx context.Context, path string) (string, error) {
	var author string
	err := s.db.GetContext(ctx, &author,
		`SELECT author FROM change_events WHERE path = ? ORDER BY committed_at DESC LIMIT 1`, path)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errs.StorageError(err, "query last author for %s", path)
	}
	return author, nil
}

// TotalTargetCommitCount is the coupling denominator: the number of
// distinct commits touching the target path. It is the same query as
// CommitCount, named separately for clarity at call sites.
func (s *Store) TotalTargetCommitCount(ctx context.Context, targetPath string) (int, error) {
	return s.CommitCount(ctx, targetPath)
}

// RepoNewestCommitTS returns the most recent committed_at observed
// across the whole repository, or nil on an empty index.
func (s *Store) RepoNewestCommitTS(ctx context.Context) (*time.Time, error) {
	var max sql.NullInt64
	err := s.db.GetContext(ctx, &max, `SELECT MAX(committed_at) FROM change_events`)
	if err != nil {
		return nil, errs.StorageError(err, "query newest commit timestamp")
	}
	if !max.Valid {
		return nil, nil
	}
	ts := time.Unix(max.Int64, 0).UTC()
	return &ts, nil
}

// AddNote validates content is non-empty, inserts a new note, and
// returns it with its generated id.
func (s *Store) AddNote(ctx context.Context, path string, symbol *string, content string) (*Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errs.ValidationError("note content must not be empty")
	}

	now := time.Now().UTC()
	s.writerMu.Lock()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (path, symbol, content, created_at) VALUES (?, ?, ?, ?)`,
		path, symbol, content, now.Unix())
	s.writerMu.Unlock()
	if err != nil {
		return nil, errs.StorageError(err, "insert note for %s", path)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, errs.StorageError(err, "read generated note id")
	}

	return &Note{ID: id, Path: path, Symbol: symbol, Content: content, CreatedAt: now}, nil
}

// NotesForPath returns every note filed against path, newest first.
func (s *Store) NotesForPath(ctx context.Context, path string) ([]Note, error) {
	return s.queryNotes(ctx,
		`SELECT id, path, symbol, content, created_at FROM notes WHERE path = ? ORDER BY created_at DESC`,
		path)
}

// SearchNotes performs a case-insensitive substring match over content
// and path, newest first.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]Note, error) {
	like := "%" + strings.ToLower(query) + "%"
	return s.queryNotes(ctx,
		`SELECT id, path, symbol, content, created_at FROM notes
		 WHERE LOWER(content) LIKE ? OR LOWER(path) LIKE ?
		 ORDER BY created_at DESC`,
		like, like)
}

// ListNotes returns every note, newest first.
func (s *Store) ListNotes(ctx context.Context) ([]Note, error) {
	return s.queryNotes(ctx,
		`SELECT id, path, symbol, content, created_at FROM notes ORDER BY created_at DESC`)
}

func (s *Store) queryNotes(ctx context.Context, query string, args ...interface{}) ([]Note, error) {
	var rows []struct {
		ID        int64   `db:"id"`
		Path      string  `db:"path"`
		Symbol    *string `db:"symbol"`
		Content   string  `db:"content"`
		CreatedAt int64   `db:"created_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errs.StorageError(err, "query notes")
	}

	out := make([]Note, 0, len(rows))
	for _, r := range rows {
		out = append(out, Note{
			ID:        r.ID,
			Path:      r.Path,
			Symbol:    r.Symbol,
			Content:   r.Content,
			CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
		})
	}
	return out, nil
}

// Package notes is a thin layer over the persistence notes table
// exposing add/search/list plus an attach step that enriches
// already-scored coupled files with the notes filed against them.
package notes

import (
	"context"

	"github.com/spectra-g/engram/internal/risk"
	"github.com/spectra-g/engram/internal/store"
)

// dataSource is the subset of *store.Store the knowledge store reads
// and writes through.
type dataSource interface {
	AddNote(ctx context.Context, path string, symbol *string, content string) (*store.Note, error)
	NotesForPath(ctx context.Context, path string) ([]store.Note, error)
	SearchNotes(ctx context.Context, query string) ([]store.Note, error)
	ListNotes(ctx context.Context) ([]store.Note, error)
}

// Store wraps the persistence layer's notes table.
type Store struct {
	db dataSource
}

// New creates a notes.Store over the given persistence backend.
func New(db dataSource) *Store {
	return &Store{db: db}
}

// Add validates content is non-empty, inserts a new note, and returns
// it with its generated id.
func (s *Store) Add(ctx context.Context, path string, symbol *string, content string) (*store.Note, error) {
	return s.db.AddNote(ctx, path, symbol, content)
}

// Search performs a case-insensitive substring match over content and
// path, newest first.
func (s *Store) Search(ctx context.Context, query string) ([]store.Note, error) {
	return s.db.SearchNotes(ctx, query)
}

// List returns notes for path if supplied, otherwise every note,
// newest first.
func (s *Store) List(ctx context.Context, path string) ([]store.Note, error) {
	if path != "" {
		return s.db.NotesForPath(ctx, path)
	}
	return s.db.ListNotes(ctx)
}

// Attached pairs a risk.Score with the notes filed against its path.
type Attached struct {
	risk.Score
	Memories []store.Note
}

// Attach populates each coupled file's notes field by querying
// notes_for_path. Files with no notes get a nil Memories slice, which
// callers must omit rather than serialize as an empty list.
func (s *Store) Attach(ctx context.Context, scores []risk.Score) ([]Attached, error) {
	out := make([]Attached, 0, len(scores))
	for _, sc := range scores {
		notesForPath, err := s.db.NotesForPath(ctx, sc.Path)
		if err != nil {
			return nil, err
		}
		attached := Attached{Score: sc}
		if len(notesForPath) > 0 {
			attached.Memories = notesForPath
		}
		out = append(out, attached)
	}
	return out, nil
}

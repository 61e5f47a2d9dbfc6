package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "engram.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWatermarkVirginDatabase(t *testing.T) {
	s := openTestStore(t)
	wm, err := s.GetWatermark(context.Background())
	require.NoError(t, err)
	assert.Nil(t, wm)
}

func TestSetWatermarkOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetWatermark(ctx, "abc123", time.Unix(1000, 0)))
	require.NoError(t, tx.Commit())

	wm, err := s.GetWatermark(ctx)
	require.NoError(t, err)
	require.NotNil(t, wm)
	assert.Equal(t, "abc123", wm.LastCommitID)

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetWatermark(ctx, "def456", time.Unix(2000, 0)))
	require.NoError(t, tx.Commit())

	wm, err = s.GetWatermark(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def456", wm.LastCommitID)
}

func TestInsertChangeEventIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertChangeEvent(ctx, "c1", "a.go", time.Unix(100, 0), "alice"))
	require.NoError(t, tx.InsertChangeEvent(ctx, "c1", "a.go", time.Unix(100, 0), "alice"))
	require.NoError(t, tx.Commit())

	count, err := s.CommitCount(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRollbackDiscardsBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertChangeEvent(ctx, "c1", "a.go", time.Unix(100, 0), "alice"))
	require.NoError(t, tx.Rollback())

	count, err := s.CommitCount(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	wm, err := s.GetWatermark(ctx)
	require.NoError(t, err)
	assert.Nil(t, wm)
}

func TestCoChangeCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	commits := []struct {
		id    string
		paths []string
		ts    int64
	}{
		{"c1", []string{"a.go", "b.go"}, 100},
		{"c2", []string{"a.go", "b.go"}, 200},
		{"c3", []string{"a.go", "c.go"}, 300},
	}
	for _, c := range commits {
		for _, p := range c.paths {
			require.NoError(t, tx.InsertChangeEvent(ctx, c.id, p, time.Unix(c.ts, 0), "alice"))
		}
	}
	require.NoError(t, tx.Commit())

	rows, err := s.CoChangeCounts(ctx, "a.go")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byPath := map[string]CoChangeRow{}
	for _, r := range rows {
		byPath[r.Path] = r
	}
	assert.Equal(t, 2, byPath["b.go"].Count)
	assert.Equal(t, 1, byPath["c.go"].Count)
	assert.Equal(t, time.Unix(200, 0).UTC(), byPath["b.go"].LastCoCommittedAt)

	total, err := s.TotalTargetCommitCount(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestLastAuthorForPath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	empty, err := s.LastAuthorForPath(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertChangeEvent(ctx, "c1", "a.go", time.Unix(100, 0), "alice"))
	require.NoError(t, tx.InsertChangeEvent(ctx, "c2", "a.go", time.Unix(200, 0), "bob"))
	require.NoError(t, tx.Commit())

	author, err := s.LastAuthorForPath(ctx, "a.go")
	require.NoError(t, err)
	assert.Equal(t, "bob", author)
}

func TestNotesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.AddNote(ctx, "a.go", nil, "")
	assert.Error(t, err)

	note, err := s.AddNote(ctx, "a.go", nil, "remember to check nil guards here")
	require.NoError(t, err)
	assert.NotZero(t, note.ID)

	notes, err := s.NotesForPath(ctx, "a.go")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "remember to check nil guards here", notes[0].Content)

	found, err := s.SearchNotes(ctx, "NIL GUARDS")
	require.NoError(t, err)
	require.Len(t, found, 1)

	all, err := s.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

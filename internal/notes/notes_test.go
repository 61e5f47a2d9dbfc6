package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectra-g/engram/internal/risk"
	"github.com/spectra-g/engram/internal/store"
)

type fakeDB struct {
	notesByPath map[string][]store.Note
	searched    []store.Note
	all         []store.Note
	added       []store.Note
}

func (f *fakeDB) AddNote(_ context.Context, path string, symbol *string, content string) (*store.Note, error) {
	n := store.Note{ID: int64(len(f.added) + 1), Path: path, Symbol: symbol, Content: content, CreatedAt: time.Now().UTC()}
	f.added = append(f.added, n)
	return &n, nil
}

func (f *fakeDB) NotesForPath(_ context.Context, path string) ([]store.Note, error) {
	return f.notesByPath[path], nil
}

func (f *fakeDB) SearchNotes(_ context.Context, _ string) ([]store.Note, error) {
	return f.searched, nil
}

func (f *fakeDB) ListNotes(_ context.Context) ([]store.Note, error) {
	return f.all, nil
}

func TestAddReturnsGeneratedNote(t *testing.T) {
	db := &fakeDB{}
	s := New(db)
	n, err := s.Add(context.Background(), "src/Auth.ts", nil, "watch out for token expiry edge cases")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)
	assert.Equal(t, "src/Auth.ts", n.Path)
}

func TestListWithPathDelegatesToNotesForPath(t *testing.T) {
	want := []store.Note{{ID: 1, Path: "a.go", Content: "x"}}
	db := &fakeDB{notesByPath: map[string][]store.Note{"a.go": want}}
	s := New(db)
	got, err := s.List(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestListWithoutPathDelegatesToListNotes(t *testing.T) {
	want := []store.Note{{ID: 1, Path: "a.go", Content: "x"}, {ID: 2, Path: "b.go", Content: "y"}}
	db := &fakeDB{all: want}
	s := New(db)
	got, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAttachOmitsEmptyMemories(t *testing.T) {
	db := &fakeDB{notesByPath: map[string][]store.Note{
		"a.go": {{ID: 1, Path: "a.go", Content: "careful here"}},
	}}
	s := New(db)
	scores := []risk.Score{{Path: "a.go"}, {Path: "b.go"}}

	attached, err := s.Attach(context.Background(), scores)
	require.NoError(t, err)
	require.Len(t, attached, 2)

	assert.Len(t, attached[0].Memories, 1)
	assert.Nil(t, attached[1].Memories)
}

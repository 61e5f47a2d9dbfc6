package mcp

import (
	"context"

	"github.com/spectra-g/engram/internal/analysis"
	"github.com/spectra-g/engram/internal/config"
	"github.com/spectra-g/engram/internal/errs"
	"github.com/spectra-g/engram/internal/notes"
	"github.com/spectra-g/engram/internal/store"
)

// openRepoStore opens the embedded database for a repo root. Every
// handler opens and closes its own store per call rather than holding
// one open across the server's lifetime, since each call may target a
// different repository.
func openRepoStore(cfg *config.Config, repoRoot string) (*store.Store, error) {
	if repoRoot == "" {
		return nil, errs.ValidationError("repo_root is required")
	}
	return store.Open(cfg.DBPath(repoRoot))
}

// HandleAnalyze runs engram_analyze.
func HandleAnalyze(ctx context.Context, cfg *config.Config, input AnalyzeInput) (*analysis.Result, error) {
	st, err := openRepoStore(cfg, input.RepoRoot)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	coord := analysis.New(cfg.Analysis)
	return coord.Analyze(ctx, st, input.FilePath, input.RepoRoot)
}

// HandleAddNote runs engram_add_note.
func HandleAddNote(ctx context.Context, cfg *config.Config, input AddNoteInput) (*AddNoteOutput, error) {
	st, err := openRepoStore(cfg, input.RepoRoot)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	n, err := notes.New(st).Add(ctx, input.FilePath, input.Symbol, input.Content)
	if err != nil {
		return nil, err
	}
	out := toAddNoteOutput(n)
	return &out, nil
}

// HandleSearchNotes runs engram_search_notes.
func HandleSearchNotes(ctx context.Context, cfg *config.Config, input SearchNotesInput) (*SearchNotesOutput, error) {
	st, err := openRepoStore(cfg, input.RepoRoot)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	results, err := notes.New(st).Search(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &SearchNotesOutput{Query: input.Query, Memories: results}, nil
}

// HandleListNotes runs engram_list_notes.
func HandleListNotes(ctx context.Context, cfg *config.Config, input ListNotesInput) (*ListNotesOutput, error) {
	st, err := openRepoStore(cfg, input.RepoRoot)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	results, err := notes.New(st).List(ctx, input.FilePath)
	if err != nil {
		return nil, err
	}
	return &ListNotesOutput{FilePath: input.FilePath, Memories: results}, nil
}

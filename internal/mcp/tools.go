// Package mcp exposes the four engine operations as typed tool
// input/output schemas: tool name constants, struct-tag-derived JSON
// schemas, and shared error/result helpers.
package mcp

import (
	"github.com/spectra-g/engram/internal/analysis"
	"github.com/spectra-g/engram/internal/store"
)

// Tool name constants for the four operations exposed over MCP.
const (
	ToolNameAnalyze     = "engram_analyze"
	ToolNameAddNote     = "engram_add_note"
	ToolNameSearchNotes = "engram_search_notes"
	ToolNameListNotes   = "engram_list_notes"
)

// AnalyzeInput is the input schema for engram_analyze.
type AnalyzeInput struct {
	FilePath string `json:"file_path" jsonschema:"repository-relative path to analyze"`
	RepoRoot string `json:"repo_root" jsonschema:"absolute path to the git repository root"`
}

// AddNoteInput is the input schema for engram_add_note.
type AddNoteInput struct {
	FilePath string  `json:"file_path" jsonschema:"repository-relative path the note is filed against"`
	Content  string  `json:"content" jsonschema:"note body"`
	RepoRoot string  `json:"repo_root" jsonschema:"absolute path to the git repository root"`
	Symbol   *string `json:"symbol,omitempty" jsonschema:"optional symbol name within the file"`
}

// SearchNotesInput is the input schema for engram_search_notes.
type SearchNotesInput struct {
	Query    string `json:"query" jsonschema:"case-insensitive substring to match against note content and path"`
	RepoRoot string `json:"repo_root" jsonschema:"absolute path to the git repository root"`
}

// ListNotesInput is the input schema for engram_list_notes.
type ListNotesInput struct {
	RepoRoot string `json:"repo_root" jsonschema:"absolute path to the git repository root"`
	FilePath string `json:"file_path,omitempty" jsonschema:"optional path filter; omitted lists every note"`
}

// AddNoteOutput is the response shape for engram_add_note.
type AddNoteOutput struct {
	ID       int64  `json:"id"`
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// SearchNotesOutput is the response shape for engram_search_notes.
type SearchNotesOutput struct {
	Query    string       `json:"query"`
	Memories []store.Note `json:"memories"`
}

// ListNotesOutput is the response shape for engram_list_notes.
type ListNotesOutput struct {
	FilePath string       `json:"file_path,omitempty"`
	Memories []store.Note `json:"memories"`
}

// ErrorOutput is the fatal-failure shape every tool returns on error:
// only an error field and a human-readable message, never partial data.
type ErrorOutput struct {
	Error string `json:"error"`
}

// toAddNoteOutput projects a persisted note onto the external shape.
func toAddNoteOutput(n *store.Note) AddNoteOutput {
	return AddNoteOutput{ID: n.ID, FilePath: n.Path, Content: n.Content}
}

// AnalyzeOutput is the response shape for engram_analyze, identical
// to analysis.Result.
type AnalyzeOutput = analysis.Result

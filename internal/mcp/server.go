package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/spectra-g/engram/internal/config"
)

const (
	serverName    = "engram"
	serverVersion = "1.0.0"
)

// Server wraps the MCP SDK server with Engram's four tool registrations.
type Server struct {
	inner *mcpsdk.Server
	cfg   *config.Config
}

// NewServer creates an MCP server with all four Engram tools registered.
func NewServer(cfg *config.Config) *Server {
	inner := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &mcpsdk.ServerOptions{})

	s := &Server{inner: inner, cfg: cfg}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameAnalyze,
		Description: "Returns the historical blast radius for a file: co-changed files ranked by risk, with attached notes and test intents.",
	}, s.handleAnalyze)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameAddNote,
		Description: "Files a note against a path in the knowledge store.",
	}, s.handleAddNote)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameSearchNotes,
		Description: "Searches notes by a case-insensitive content/path substring.",
	}, s.handleSearchNotes)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListNotes,
		Description: "Lists notes, optionally filtered to one path.",
	}, s.handleListNotes)
}

// Run starts the MCP server on stdio transport, blocking until the
// context is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	if err := s.inner.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func (s *Server) handleAnalyze(ctx context.Context, _ *mcpsdk.CallToolRequest, input AnalyzeInput) (*mcpsdk.CallToolResult, AnalyzeOutput, error) {
	result, err := HandleAnalyze(ctx, s.cfg, input)
	if err != nil {
		return errorResult[AnalyzeOutput](err)
	}
	return jsonResult(*result)
}

func (s *Server) handleAddNote(ctx context.Context, _ *mcpsdk.CallToolRequest, input AddNoteInput) (*mcpsdk.CallToolResult, AddNoteOutput, error) {
	result, err := HandleAddNote(ctx, s.cfg, input)
	if err != nil {
		return errorResult[AddNoteOutput](err)
	}
	return jsonResult(*result)
}

func (s *Server) handleSearchNotes(ctx context.Context, _ *mcpsdk.CallToolRequest, input SearchNotesInput) (*mcpsdk.CallToolResult, SearchNotesOutput, error) {
	result, err := HandleSearchNotes(ctx, s.cfg, input)
	if err != nil {
		return errorResult[SearchNotesOutput](err)
	}
	return jsonResult(*result)
}

func (s *Server) handleListNotes(ctx context.Context, _ *mcpsdk.CallToolRequest, input ListNotesInput) (*mcpsdk.CallToolResult, ListNotesOutput, error) {
	result, err := HandleListNotes(ctx, s.cfg, input)
	if err != nil {
		return errorResult[ListNotesOutput](err)
	}
	return jsonResult(*result)
}

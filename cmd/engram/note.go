package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/spectra-g/engram/internal/notes"
	"github.com/spectra-g/engram/internal/store"
)

var (
	noteRepoRoot string
	noteSymbol   string
)

var addNoteCmd = &cobra.Command{
	Use:   "add-note <file_path> <content>",
	Short: "File a note against a path",
	Args:  cobra.ExactArgs(2),
	RunE:  runAddNote,
}

var searchNotesCmd = &cobra.Command{
	Use:   "search-notes <query>",
	Short: "Search notes by content or path substring",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchNotes,
}

var listNotesCmd = &cobra.Command{
	Use:   "list-notes [file_path]",
	Short: "List notes, optionally filtered to one path",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runListNotes,
}

func init() {
	for _, c := range []*cobra.Command{addNoteCmd, searchNotesCmd, listNotesCmd} {
		c.Flags().StringVar(&noteRepoRoot, "repo-root", "", "repository root (default: current directory)")
	}
	addNoteCmd.Flags().StringVar(&noteSymbol, "symbol", "", "optional symbol name within the file")
}

func runAddNote(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(noteRepoRoot)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath(repoRoot))
	if err != nil {
		return err
	}
	defer st.Close()

	var symbol *string
	if noteSymbol != "" {
		symbol = &noteSymbol
	}

	n, err := notes.New(st).Add(context.Background(), args[0], symbol, args[1])
	if err != nil {
		return err
	}
	return printJSON(n)
}

func runSearchNotes(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(noteRepoRoot)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath(repoRoot))
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := notes.New(st).Search(context.Background(), args[0])
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{"query": args[0], "memories": results})
}

func runListNotes(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(noteRepoRoot)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.DBPath(repoRoot))
	if err != nil {
		return err
	}
	defer st.Close()

	var path string
	if len(args) == 1 {
		path = args[0]
	}

	results, err := notes.New(st).List(context.Background(), path)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{"file_path": path, "memories": results})
}

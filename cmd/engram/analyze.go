package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spectra-g/engram/internal/analysis"
	"github.com/spectra-g/engram/internal/store"
)

var analyzeRepoRoot string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file_path>",
	Short: "Print the historical blast radius for a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRepoRoot, "repo-root", "", "repository root (default: current directory)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	repoRoot, err := resolveRepoRoot(analyzeRepoRoot)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath(repoRoot))
	if err != nil {
		return err
	}
	defer st.Close()

	coord := analysis.New(cfg.Analysis)
	result, err := coord.Analyze(context.Background(), st, args[0], repoRoot)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func resolveRepoRoot(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	return os.Getwd()
}

// printJSON writes value as indented JSON when stdout is a terminal
// (readable for a human running the CLI directly) and compact JSON
// otherwise (a pipe or adapter consuming machine output).
func printJSON(value interface{}) error {
	var data []byte
	var err error
	if term.IsTerminal(int(os.Stdout.Fd())) {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

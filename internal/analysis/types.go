package analysis

import (
	"github.com/spectra-g/engram/internal/store"
	"github.com/spectra-g/engram/internal/testintent"
)

// CoupledFile is one ranked, enriched result entry.
type CoupledFile struct {
	Path          string              `json:"path"`
	CouplingScore float64             `json:"coupling_score"`
	CoChangeCount int                 `json:"co_change_count"`
	RiskScore     float64             `json:"risk_score"`
	Memories      []store.Note        `json:"memories,omitempty"`
	TestIntents   []testintent.Intent `json:"test_intents,omitempty"`
	// LastAuthor is a diagnostic only, never consumed by the risk
	// scorer: authorship is deliberately excluded from the risk formula.
	LastAuthor string `json:"last_author,omitempty"`
}

// TestInfoFile is one entry of TestInfo.TestFiles.
type TestInfoFile struct {
	Path        string              `json:"path"`
	TestCount   int                 `json:"test_count"`
	TestIntents []testintent.Intent `json:"test_intents,omitempty"`
}

// TestInfo is the proactive-discovery bucket, separate from
// coupled_files so a discovered test that never co-commits with the
// target still surfaces.
type TestInfo struct {
	TestFiles    []TestInfoFile `json:"test_files,omitempty"`
	CoverageHint string         `json:"coverage_hint,omitempty"`
}

// Result is the public analysis result shape returned to every
// adapter (CLI, MCP).
type Result struct {
	FilePath       string        `json:"file_path"`
	RepoRoot       string        `json:"repo_root"`
	CoupledFiles   []CoupledFile `json:"coupled_files"`
	CommitCount    int           `json:"commit_count"`
	AnalysisTimeMS int64         `json:"analysis_time_ms"`
	TestInfo       *TestInfo     `json:"test_info,omitempty"`
	PartialIndex   bool          `json:"partial_index,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// Package analysis is the single analyze() entry point tying together
// the store, temporal indexer, risk scorer, knowledge store, and
// test-intent extractor under a deadline.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spectra-g/engram/internal/config"
	"github.com/spectra-g/engram/internal/errs"
	"github.com/spectra-g/engram/internal/logging"
	"github.com/spectra-g/engram/internal/notes"
	"github.com/spectra-g/engram/internal/pathutil"
	"github.com/spectra-g/engram/internal/risk"
	"github.com/spectra-g/engram/internal/store"
	"github.com/spectra-g/engram/internal/temporal"
	"github.com/spectra-g/engram/internal/testintent"
)

// Coordinator is the engine's single public entry point.
type Coordinator struct {
	cfg config.AnalysisConfig
	log *slog.Logger
}

// New creates a Coordinator with the given analysis tunables.
func New(cfg config.AnalysisConfig) *Coordinator {
	return &Coordinator{cfg: cfg, log: logging.With("component", "analysis")}
}

// Analyze runs the full pipeline for one repository-relative target
// path against one repository root. It never returns a Go error for
// ordinary "nothing found" conditions — a non-existent target path
// yields an empty coupled list, not an error — but does return one for
// fatal repository/storage conditions: the coordinator is the only
// component allowed to convert those into a user-visible failure.
func (c *Coordinator) Analyze(ctx context.Context, st *store.Store, targetPath, repoRoot string) (*Result, error) {
	start := time.Now()
	targetPath = pathutil.Normalize(targetPath)
	if targetPath == "" {
		return nil, errs.ValidationError("target path must not be empty")
	}

	// A correlation id ties together the log lines the coordinator
	// itself emits for this call, so concurrent analyze() calls (e.g.
	// the MCP server serving two clients) don't interleave into an
	// unreadable stream. The indexer's and scorer's own log lines do
	// not carry it.
	reqLog := c.log.With("request_id", uuid.NewString())

	soft := start.Add(c.cfg.SoftDeadline)
	hard := start.Add(c.cfg.HardDeadline)

	ix := temporal.New(repoRoot, st, c.cfg)
	wm, err := st.GetWatermark(ctx)
	if err != nil {
		return nil, err
	}

	deadline := soft
	if wm == nil {
		// Virgin database: allow the full cold-path budget.
		deadline = hard
	}

	partial, freshness, err := ix.EnsureFresh(ctx, deadline, targetPath)
	if err != nil {
		if errs.IsFatal(err) {
			return nil, err
		}
		reqLog.Warn("indexing error during analyze, proceeding with existing index", "error", err)
		partial = true
	}
	if freshness == temporal.FreshnessIndexing {
		reqLog.Debug("proceeding against existing index while another call indexes", "target_path", targetPath)
	}

	scorer := risk.New(st, c.cfg)
	scores, err := scorer.Rank(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	commitCount, err := st.TotalTargetCommitCount(ctx, targetPath)
	if err != nil {
		return nil, err
	}

	coupled, testInfo := c.enrich(ctx, reqLog, st, repoRoot, targetPath, scores, hard)

	result := &Result{
		FilePath:     targetPath,
		RepoRoot:     repoRoot,
		CoupledFiles: coupled,
		CommitCount:  commitCount,
		TestInfo:     testInfo,
		PartialIndex: partial || time.Now().After(hard),
	}
	result.AnalysisTimeMS = time.Since(start).Milliseconds()
	return result, nil
}

// enrich runs the notes-attach and test-intent passes concurrently,
// within the deadline budget.
func (c *Coordinator) enrich(ctx context.Context, log *slog.Logger, st *store.Store, repoRoot, targetPath string, scores []risk.Score, deadline time.Time) ([]CoupledFile, *TestInfo) {
	noteStore := notes.New(st)
	extractor := testintent.New(repoRoot)

	var attached []notes.Attached
	var discovered []testintent.TestFile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attached, err = noteStore.Attach(gctx, scores)
		return err
	})
	g.Go(func() error {
		discovered = extractor.Discover(gctx, targetPath)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warn("enrichment failed, returning unenriched scores", "error", err)
		attached = nil
	}

	coupled := make([]CoupledFile, 0, len(scores))
	for i, sc := range scores {
		cf := CoupledFile{
			Path:          sc.Path,
			CouplingScore: sc.Coupling,
			CoChangeCount: sc.CoChangeCount,
			RiskScore:     sc.Risk,
		}
		if i < len(attached) {
			cf.Memories = attached[i].Memories
		}
		if testintent.IsTestFile(sc.Path) {
			if tf, ok := extractor.ExtractFile(sc.Path); ok && tf.Count > 0 {
				cf.TestIntents = tf.Intents
			}
		}
		if author, err := st.LastAuthorForPath(ctx, sc.Path); err == nil {
			cf.LastAuthor = author
		}
		coupled = append(coupled, cf)

		if time.Now().After(deadline) {
			log.Warn("enrichment truncated by deadline", "target_path", targetPath, "enriched", i+1, "total", len(scores))
			break
		}
	}

	var testInfo *TestInfo
	if len(discovered) > 0 {
		files := make([]TestInfoFile, 0, len(discovered))
		for _, tf := range discovered {
			files = append(files, TestInfoFile{Path: tf.Path, TestCount: tf.Count, TestIntents: tf.Intents})
		}
		testInfo = &TestInfo{TestFiles: files, CoverageHint: coverageHint(len(discovered), coupled)}
	}

	return coupled, testInfo
}

// coverageHint compares discovered test files against non-test coupled
// source files in the same result; it is a ratio hint, not a claim of
// actual line/branch coverage.
func coverageHint(testFileCount int, coupled []CoupledFile) string {
	sourceCount := 0
	for _, cf := range coupled {
		if !testintent.IsTestFile(cf.Path) {
			sourceCount++
		}
	}
	if sourceCount == 0 {
		return ""
	}
	return fmt.Sprintf("%d test file(s) discovered for %d coupled source file(s)", testFileCount, sourceCount)
}

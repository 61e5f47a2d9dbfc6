package testintent

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/spectra-g/engram/internal/logging"
	"github.com/spectra-g/engram/internal/pathutil"
)

// discoverRateLimit bounds how fast Discover probes candidate sibling
// paths, so a pathological repo layout that generates many candidates
// for one target cannot burn the whole analyze deadline on filesystem
// stats alone.
const discoverRateLimit = rate.Limit(200)

// TestFile is one discovered or coupled test file's extracted titles.
type TestFile struct {
	Path      string
	Count     int
	Intents   []Intent
}

// Extractor reads files from a repository working tree and extracts
// test intents, best-effort throughout: any read or regex error
// yields an empty result, never a propagated error.
type Extractor struct {
	repoRoot string
	log      *slog.Logger
	limiter  *rate.Limiter
}

// New creates an Extractor rooted at repoRoot.
func New(repoRoot string) *Extractor {
	return &Extractor{
		repoRoot: repoRoot,
		log:      logging.With("component", "testintent"),
		limiter:  rate.NewLimiter(discoverRateLimit, 1),
	}
}

// ExtractFile reads relPath under the repo root and extracts its test
// intents, or returns (nil, false) if it is missing or unreadable. A
// readable file with no recognizable test titles is still returned,
// with Count 0.
func (e *Extractor) ExtractFile(relPath string) (*TestFile, bool) {
	content, err := os.ReadFile(filepath.Join(e.repoRoot, relPath))
	if err != nil {
		e.log.Debug("test file unreadable, skipping", "path", relPath, "error", err)
		return nil, false
	}

	intents := Extract(relPath, string(content))
	return &TestFile{Path: relPath, Count: len(intents), Intents: intents}, true
}

// DiscoverCandidates synthesizes conventional sibling test paths for
// targetPath, e.g. "src/foo/Bar.ts" -> "src/foo/Bar.test.ts",
// "src/foo/__tests__/Bar.test.ts", "src/foo/Bar.spec.ts", and JVM
// src/test mirrors.
func DiscoverCandidates(targetPath string) []string {
	dir := filepath.Dir(targetPath)
	if dir == "." {
		dir = ""
	}
	base := pathutil.Base(targetPath)
	ext := pathutil.ExtLower(targetPath)
	stem := strings.TrimSuffix(base, "."+ext)
	if ext == "" {
		stem = base
	}

	join := func(parts ...string) string {
		var nonEmpty []string
		for _, p := range parts {
			if p != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		return pathutil.Normalize(strings.Join(nonEmpty, "/"))
	}

	var candidates []string
	switch ext {
	case "go":
		candidates = append(candidates, join(dir, stem+"_test.go"))
	case "java", "kt", "scala":
		candidates = append(candidates,
			join(jvmTestDir(dir), base),
			join(dir, stem+"Test."+ext),
			join(dir, "Test"+stem+"."+ext),
		)
	default:
		candidates = append(candidates,
			join(dir, stem+".test."+ext),
			join(dir, stem+".spec."+ext),
			join(dir, "__tests__", stem+".test."+ext),
			join(dir, "test_"+stem+"."+ext),
		)
	}
	return candidates
}

// jvmTestDir mirrors a "src/main/..." or "src/..." source directory
// onto its "src/test/..." counterpart; any other layout is returned
// unchanged (the caller's candidate will then simply never exist).
func jvmTestDir(dir string) string {
	segments := pathutil.Segments(dir)
	for i, seg := range segments {
		if seg == "src" {
			rest := segments[i+1:]
			if len(rest) > 0 && rest[0] == "main" {
				rest = rest[1:]
			}
			mirrored := append([]string{}, segments[:i+1]...)
			mirrored = append(mirrored, "test")
			mirrored = append(mirrored, rest...)
			return strings.Join(mirrored, "/")
		}
	}
	return dir
}

// Discover runs proactive discovery for targetPath and returns every
// candidate that exists and is readable, each capped at
// TestIntentsPerFile titles.
func (e *Extractor) Discover(ctx context.Context, targetPath string) []TestFile {
	var found []TestFile
	for _, candidate := range DiscoverCandidates(targetPath) {
		if err := e.limiter.Wait(ctx); err != nil {
			e.log.Debug("discovery rate limiter wait failed, stopping early", "error", err)
			break
		}
		if tf, ok := e.ExtractFile(candidate); ok {
			found = append(found, *tf)
		}
	}
	return found
}

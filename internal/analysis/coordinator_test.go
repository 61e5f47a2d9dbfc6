package analysis

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectra-g/engram/internal/config"
	"github.com/spectra-g/engram/internal/store"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	return dir
}

func writeAndCommit(t *testing.T, dir, msg string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	cmd := exec.Command("git", "add", "-A")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	cmd = exec.Command("git", "commit", "-q", "-m", msg)
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
}

func TestAnalyzeCoupledPairAndNoteAttachment(t *testing.T) {
	repo := initRepo(t)
	writeAndCommit(t, repo, "initial", map[string]string{
		"src/Auth.ts":    "export const a = 1;\n",
		"src/Session.db": "binary-ish content\n",
		"src/Utils.ts":   "export const u = 1;\n",
	})
	for i := 0; i < 50; i++ {
		writeAndCommit(t, repo, "co-change", map[string]string{
			"src/Auth.ts":    "export const a = 1;\n// v" + string(rune('a'+i%26)) + "\n",
			"src/Session.db": "binary-ish content\n// v" + string(rune('a'+i%26)) + "\n",
		})
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "engram.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = st.AddNote(context.Background(), "src/Session.db", nil, "ownership is shared with the billing team")
	require.NoError(t, err)

	coord := New(config.Default().Analysis)
	result, err := coord.Analyze(context.Background(), st, "src/Auth.ts", repo)
	require.NoError(t, err)

	var session *CoupledFile
	for i := range result.CoupledFiles {
		if result.CoupledFiles[i].Path == "src/Session.db" {
			session = &result.CoupledFiles[i]
		}
	}
	require.NotNil(t, session, "src/Session.db must be coupled with src/Auth.ts")
	assert.Greater(t, session.CouplingScore, 0.95)
	require.Len(t, session.Memories, 1)
	assert.Equal(t, "ownership is shared with the billing team", session.Memories[0].Content)
	assert.Equal(t, "Test", session.LastAuthor)

	assert.LessOrEqual(t, len(result.CoupledFiles), 10)
	assert.Equal(t, "src/Auth.ts", result.FilePath)
	assert.Equal(t, repo, result.RepoRoot)
}

func TestAnalyzeNonExistentTargetYieldsEmptyNotError(t *testing.T) {
	repo := initRepo(t)
	writeAndCommit(t, repo, "initial", map[string]string{"a.go": "package a\n"})

	st, err := store.Open(filepath.Join(t.TempDir(), "engram.db"))
	require.NoError(t, err)
	defer st.Close()

	coord := New(config.Default().Analysis)
	result, err := coord.Analyze(context.Background(), st, "never/existed.go", repo)
	require.NoError(t, err)
	assert.Empty(t, result.CoupledFiles)
	assert.Empty(t, result.Error)
}

func TestAnalyzeIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	repo := initRepo(t)
	writeAndCommit(t, repo, "initial", map[string]string{"a.go": "package a\n", "b.go": "package b\n"})
	for i := 0; i < 5; i++ {
		writeAndCommit(t, repo, "co-change", map[string]string{
			"a.go": "package a\n// v" + string(rune('a'+i)) + "\n",
			"b.go": "package b\n// v" + string(rune('a'+i)) + "\n",
		})
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "engram.db"))
	require.NoError(t, err)
	defer st.Close()

	coord := New(config.Default().Analysis)
	first, err := coord.Analyze(context.Background(), st, "a.go", repo)
	require.NoError(t, err)
	second, err := coord.Analyze(context.Background(), st, "a.go", repo)
	require.NoError(t, err)

	assert.Equal(t, first.CoupledFiles, second.CoupledFiles)
	assert.Equal(t, first.CommitCount, second.CommitCount)
}

package temporal

import (
	"bufio"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/spectra-g/engram/internal/errs"
	"github.com/spectra-g/engram/internal/pathutil"
)

// headerSep/fieldSep delimit the commit header line emitted by
// --pretty so it can never collide with a tab-separated name-status
// line or a path containing a tab. The --pretty format asks git for
// them through its %x00/%x01 escapes, since a process argument cannot
// carry a NUL byte itself.
const (
	headerSep = "\x00"
	fieldSep  = "\x01"
)

func runGit(ctx context.Context, repoRoot string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repoRoot
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", errs.Wrapf(errs.Repository, err, "git %s failed: %s", strings.Join(args, " "), string(exitErr.Stderr))
		}
		return "", errs.Wrapf(errs.Repository, err, "git %s failed", strings.Join(args, " "))
	}
	return string(out), nil
}

// headCommit resolves HEAD. Returns a RepositoryError if repoRoot is
// not a git repository or has no commits yet.
func headCommit(ctx context.Context, repoRoot string) (string, error) {
	out, err := runGit(ctx, repoRoot, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// isGitRepository reports whether repoRoot is inside a git working tree.
func isGitRepository(ctx context.Context, repoRoot string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = repoRoot
	return cmd.Run() == nil
}

// revListCount counts commits in rev (a ref or a "from..to" range).
func revListCount(ctx context.Context, repoRoot, rev string) (int, error) {
	out, err := runGit(ctx, repoRoot, "rev-list", "--count", rev)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(out))
	if convErr != nil {
		return 0, errs.Wrapf(errs.Repository, convErr, "parse rev-list count output %q", out)
	}
	return n, nil
}

// walkCommits runs one `git log` invocation covering rev (a ref or a
// "from..to" range) and optionally restricted to pathspec, with
// first-parent-only diffs and rename detection enabled, returning
// commits oldest-first with already rename-resolved file changes.
//
// Renames are recorded on the destination path only: `-M` plus
// --name-status reports a rename as "R<score>\told\tnew", and we keep
// only `new`.
func walkCommits(ctx context.Context, repoRoot, rev string, pathspec string) ([]Commit, error) {
	args := []string{
		"log", "--reverse", "--name-status", "-M",
		"--diff-merges=first-parent",
		"--pretty=format:%x00%H%x01%ct%x01%an",
		rev,
	}
	if pathspec != "" {
		args = append(args, "--", pathspec)
	}

	out, err := runGit(ctx, repoRoot, args...)
	if err != nil {
		return nil, err
	}

	return parseWalkOutput(out)
}

func parseWalkOutput(output string) ([]Commit, error) {
	var commits []Commit
	var current *Commit

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, headerSep) {
			if current != nil {
				commits = append(commits, *current)
			}
			header := strings.TrimPrefix(line, headerSep)
			parts := strings.SplitN(header, fieldSep, 3)
			if len(parts) != 3 {
				current = nil
				continue
			}
			ts, convErr := strconv.ParseInt(parts[1], 10, 64)
			if convErr != nil {
				current = nil
				continue
			}
			current = &Commit{ID: parts[0], Timestamp: time.Unix(ts, 0).UTC(), Author: parts[2]}
			continue
		}

		if current == nil {
			continue
		}

		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 {
			continue
		}

		status := fields[0]
		var path, oldPath string
		switch {
		case strings.HasPrefix(status, "R"):
			// "R<score>\told\tnew": history follows the file to new.
			if len(fields) < 3 {
				continue
			}
			oldPath = pathutil.Normalize(fields[1])
			path = fields[2]
		case strings.HasPrefix(status, "C"):
			// Copies start a new, independent lineage at the copy path.
			if len(fields) < 3 {
				continue
			}
			path = fields[2]
		default:
			path = fields[1]
		}

		current.Changes = append(current.Changes, CommitChange{
			Path:    pathutil.Normalize(path),
			OldPath: oldPath,
		})
	}

	if current != nil {
		commits = append(commits, *current)
	}

	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.Indexing, err, "scan git log output")
	}

	return commits, nil
}

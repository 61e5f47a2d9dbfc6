package temporal

import "time"

// Freshness is the indexer's state relative to HEAD as reported by
// EnsureFresh: the state it found, or the state its own pass left.
type Freshness string

const (
	FreshnessVirgin   Freshness = "virgin"   // no watermark yet
	FreshnessStale    Freshness = "stale"    // watermark older than HEAD
	FreshnessFresh    Freshness = "fresh"    // watermark equals HEAD
	FreshnessIndexing Freshness = "indexing" // writer lock held by another call
)

// CommitChange is one path touched by one commit. Path is always the
// destination path (renames/copies already resolved by the git diff
// parser); OldPath is set only for a true rename and tells the indexer
// to carry the source path's prior history forward onto Path.
// Filtering by should_index happens at insert time, not here.
type CommitChange struct {
	Path    string
	OldPath string
}

// Commit is a single entry from the first-parent commit walk, with its
// already-rename-resolved file changes.
type Commit struct {
	ID        string
	Timestamp time.Time
	Author    string
	Changes   []CommitChange
}

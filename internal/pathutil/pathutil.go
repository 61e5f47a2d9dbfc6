// Package pathutil normalizes repository-relative paths to a
// canonical forward-slash form for all stored paths and comparisons.
package pathutil

import (
	"path"
	"strings"
)

// Normalize converts p to a repository-root-relative, forward-slash
// separated path with no leading "./" or leading slash. It does not
// touch the filesystem.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}

// Segments splits a normalized path into its slash-separated parts.
func Segments(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Base returns the final path segment (the filename).
func Base(p string) string {
	return path.Base(p)
}

// ExtLower returns the final dotted extension, lowercased, without the
// leading dot. "Bar.test.ts" yields "ts", not "test.ts" — callers that
// need compound extensions use HasSuffixCI instead.
func ExtLower(p string) string {
	base := Base(p)
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// HasSuffixCI reports whether p ends with suffix, case-insensitively.
func HasSuffixCI(p, suffix string) bool {
	return len(p) >= len(suffix) && strings.EqualFold(p[len(p)-len(suffix):], suffix)
}

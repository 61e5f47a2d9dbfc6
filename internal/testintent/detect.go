// Package testintent identifies test files by naming/path convention
// and pulls titled test cases out of them, using a language-keyed
// regex table compiled once at package load and reused across files.
package testintent

import (
	"regexp"
	"strings"

	"github.com/spectra-g/engram/internal/pathutil"
)

var testBasenamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.test\.`),
	regexp.MustCompile(`(?i)\.spec\.`),
	regexp.MustCompile(`(?i)_test\.`),
	regexp.MustCompile(`^Test.*\.java$`),
	regexp.MustCompile(`.*Test\.java$`),
	regexp.MustCompile(`.*Tests\.java$`),
	regexp.MustCompile(`.*Spec\.kt$`),
	regexp.MustCompile(`.*Spec\.scala$`),
}

var testPathSegments = map[string]bool{
	"__tests__": true,
	"tests":     true,
	"test":      true,
}

// IsTestFile reports whether path is conventionally a test file.
func IsTestFile(path string) bool {
	base := pathutil.Base(path)

	for _, re := range testBasenamePatterns {
		if re.MatchString(base) {
			return true
		}
	}
	if strings.HasPrefix(strings.ToLower(base), "test_") {
		return true
	}

	for _, seg := range pathutil.Segments(path) {
		if testPathSegments[strings.ToLower(seg)] {
			return true
		}
	}
	return false
}

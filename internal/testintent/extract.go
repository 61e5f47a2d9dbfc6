package testintent

import (
	"regexp"
	"strings"

	"github.com/spectra-g/engram/internal/pathutil"
)

// TestIntentsPerFile bounds how many titles Extract yields for one
// file. Extract always applies this constant;
// config.AnalysisConfig.TestIntentsPerFile carries the same value but
// the extractor does not read it.
const TestIntentsPerFile = 5

// extractionPattern pairs a title-capturing regex with how to turn
// its captured group into a human title.
type extractionPattern struct {
	re       *regexp.Regexp
	titleize func(match []string) string
}

// languagePatterns is keyed by lowercased file extension, compiled
// once at package load and reused across every file of that extension.
var languagePatterns = map[string][]extractionPattern{
	"js":  jsFamily(),
	"jsx": jsFamily(),
	"ts":  jsFamily(),
	"tsx": jsFamily(),
	"mjs": jsFamily(),
	"cjs": jsFamily(),

	"rs": {{
		re:       regexp.MustCompile(`#\[test\][^\n]*\n\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`),
		titleize: func(m []string) string { return strings.ReplaceAll(m[1], "_", " ") },
	}},

	"py": {{
		re:       regexp.MustCompile(`(?m)^\s*def\s+(test_\w+)`),
		titleize: func(m []string) string { return strings.ReplaceAll(strings.TrimPrefix(m[1], "test_"), "_", " ") },
	}},

	"go": {{
		re:       regexp.MustCompile(`(?m)^func\s+(Test\w+)`),
		titleize: func(m []string) string { return splitCamelCase(strings.TrimPrefix(m[1], "Test")) },
	}},

	// A @DisplayName immediately above a @Test is that method's title
	// override, not a separate title of its own: the two are matched
	// as one unit so each @Test method contributes exactly one intent,
	// with @DisplayName's text preferred over the derived method name
	// when both are present.
	"java": {{
		re:       regexp.MustCompile(`(?:@DisplayName\(\s*"([^"]+)"\s*\)\s*\n\s*)?@Test\b[^\n]*\n(?:[^\n]*\n)?\s*(?:public|private|protected)?\s*(?:static\s+)?\w[\w<>]*\s+(\w+)\s*\(`),
		titleize: func(m []string) string {
			if m[1] != "" {
				return m[1]
			}
			return splitCamelCase(m[2])
		},
	}},

	"kt": kotlinFamily(),
	"kts": kotlinFamily(),

	"scala": {{
		re:       regexp.MustCompile("(?:it|test|\"[^\"]+\"\\s+in|should)\\s*\\(?\\s*\"([^\"]+)\"\\s*\\)?"),
		titleize: func(m []string) string { return m[1] },
	}},
}

func jsFamily() []extractionPattern {
	return []extractionPattern{{
		re:       regexp.MustCompile("\\b(?:it|test|describe)\\s*\\(\\s*[\"'`](.*?)[\"'`]"),
		titleize: func(m []string) string { return m[1] },
	}}
}

func kotlinFamily() []extractionPattern {
	return []extractionPattern{
		{
			re:       regexp.MustCompile(`(?:should|it|describe|test)\s*\(\s*"([^"]+)"\s*\)`),
			titleize: func(m []string) string { return m[1] },
		},
		{
			re:       regexp.MustCompile("fun\\s+`([^`]+)`"),
			titleize: func(m []string) string { return m[1] },
		},
		{
			re:       regexp.MustCompile(`fun\s+(\w+)\s*\(`),
			titleize: func(m []string) string { return splitCamelCase(m[1]) },
		},
	}
}

// Intent is one extracted, human-readable test title.
type Intent struct {
	Title string `json:"title"`
}

// Extract pulls up to TestIntentsPerFile titles out of content using
// the pattern table for path's extension. The patterns run one after
// another in table order, each yielding its titles in source order, so
// for a language with several patterns (Kotlin) every title of one
// pattern comes before any title of the next, and the cap counts in
// that same order rather than in overall source order. An
// unrecognized extension yields no intents, never an error.
func Extract(path, content string) []Intent {
	patterns, ok := languagePatterns[pathutil.ExtLower(path)]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var intents []Intent
	for _, p := range patterns {
		for _, match := range p.re.FindAllStringSubmatch(content, -1) {
			if len(intents) >= TestIntentsPerFile {
				return intents
			}
			title := humanize(p.titleize(match))
			if title == "" || seen[title] {
				continue
			}
			seen[title] = true
			intents = append(intents, Intent{Title: title})
		}
	}
	return intents
}

// humanize normalizes an already-split title: collapse whitespace so
// multi-word identifiers read as an ordinary phrase.
func humanize(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Join(strings.Fields(title), " ")
	return title
}

// splitCamelCase turns an identifier like "HandlesExpiredToken" into
// "handles expired token", lowercasing each word unless it is already
// an all-caps acronym.
func splitCamelCase(s string) string {
	var words []string
	var current strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				words = append(words, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	for i, w := range words {
		if isAcronym(w) {
			continue
		}
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, " ")
}

// isAcronym reports whether w is entirely uppercase letters/digits
// (e.g. "HTTP", "JSON2"), which splitCamelCase leaves untouched.
func isAcronym(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if r >= 'a' && r <= 'z' {
			return false
		}
	}
	return true
}

package temporal

import "github.com/spectra-g/engram/internal/pathutil"

// lockfiles is the set of known lockfile basenames, matched exactly.
var lockfiles = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"poetry.lock":       true,
	"Gemfile.lock":      true,
	"composer.lock":     true,
	"go.sum":            true,
}

// binaryExtensions is the opaque/binary extension set, matched
// case-insensitively.
var binaryExtensions = map[string]bool{
	// images
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true, "ico": true, "svg": true,
	// fonts
	"woff": true, "woff2": true, "ttf": true, "otf": true, "eot": true,
	// archives
	"zip": true, "tar": true, "gz": true, "tgz": true, "bz2": true, "xz": true, "7z": true, "rar": true,
	// executables/objects
	"exe": true, "dll": true, "so": true, "dylib": true, "a": true, "o": true,
	// compiled/minified artifacts
	"class": true, "jar": true, "wasm": true,
}

// osMetadataBasenames are exact-match OS metadata files.
var osMetadataBasenames = map[string]bool{
	".DS_Store": true,
	"Thumbs.db": true,
}

// compoundMinifiedSuffixes handles "min.js"/"min.css"/".map" which are
// not simple single-segment extensions.
var compoundMinifiedSuffixes = []string{".min.js", ".min.css", ".map"}

// shouldIndex reports whether a change event should be recorded for
// path: lockfiles, OS metadata files, minified/compiled artifacts, and
// known binary extensions are all excluded from the index.
func shouldIndex(path string) bool {
	base := pathutil.Base(path)

	if lockfiles[base] {
		return false
	}
	if osMetadataBasenames[base] {
		return false
	}
	for _, suffix := range compoundMinifiedSuffixes {
		if pathutil.HasSuffixCI(path, suffix) {
			return false
		}
	}
	if ext := pathutil.ExtLower(path); binaryExtensions[ext] {
		return false
	}
	return true
}

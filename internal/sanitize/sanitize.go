// Package sanitize normalizes classifier-supplied text into filesystem-safe
// path segments and filenames. Classifier output is untrusted: it may contain
// path separators, placeholder tokens echoed from the prompt, or shouted
// all-caps strings.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// maxSegmentLen caps the length of a single sanitized path segment or filename stem.
const maxSegmentLen = 80

// minFilenameLen is the shortest stem accepted before the timestamp fallback kicks in.
const minFilenameLen = 3

var (
	illegalChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	whitespace   = regexp.MustCompile(`\s+`)
	versionTag   = regexp.MustCompile(`_v\d+$`)

	hexStem      = regexp.MustCompile(`^[0-9a-f]{8,}$`)
	digitStem    = regexp.MustCompile(`^[0-9_\-]+$`)
	cameraStem   = regexp.MustCompile(`^(img|image|photo|foto|scan|doc|file|dokument|unnamed|untitled|new|neu)[\s_\-0-9]*$`)
	uuidStem     = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-`)
	unixTimeStem = regexp.MustCompile(`^\d{10,}$`)
)

// placeholderNames are prompt-template tokens a classifier sometimes echoes back
// verbatim instead of producing a real filename.
var placeholderNames = map[string]bool{
	"neuer_dateiname": true,
	"dateiname":       true,
	"filename":        true,
	"neuer":           true,
	"name":            true,
	"dokument":        true,
	"unbekannt":       true,
	"unknown":         true,
}

// Clean normalizes text into a single filesystem-safe path segment: trims
// whitespace, strips characters illegal in path segments, collapses whitespace
// runs to underscores, and caps the length. All-caps strings longer than six
// characters are capitalized, a heuristic against shouted classifier output.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = illegalChars.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, "_")
	if len(text) > 6 && isAllUpper(text) {
		text = capitalize(text)
	}
	return truncate(text, maxSegmentLen)
}

// CleanFilename normalizes a proposed filename and re-appends the canonical
// extension. A duplicated trailing extension is stripped first. Placeholder
// tokens and results shorter than three characters are replaced with a
// timestamp-based fallback, so the pipeline never files a document under a
// prompt artifact like "DATEINAME.pdf".
func CleanFilename(text, ext string) string {
	text = strings.TrimSpace(text)
	if ext != "" && strings.HasSuffix(strings.ToLower(text), strings.ToLower(ext)) {
		text = text[:len(text)-len(ext)]
	}
	text = illegalChars.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, "_")
	text = strings.Trim(text, "._-")

	if text == "" || placeholderNames[strings.ToLower(text)] || len(text) < minFilenameLen {
		text = FallbackStem(time.Now())
	}
	return truncate(text, maxSegmentLen) + ext
}

// FallbackStem returns a timestamped generic document name used when the
// classifier produced nothing usable.
func FallbackStem(now time.Time) string {
	return "Dokument_" + now.Format("20060102_150405")
}

// StripVersionTag removes a trailing _vN marker from a filename stem, so that
// re-filing "Report_v2" probes "Report_v3" rather than "Report_v2_v2".
func StripVersionTag(stem string) string {
	return versionTag.ReplaceAllString(stem, "")
}

// IsCryptic reports whether a filename carries no semantic information: pure
// hex or digit stems, camera/scan default names, UUID-shaped names, long
// numeric timestamps, or very short names. Cryptic originals make renaming by
// the classifier mandatory rather than optional.
func IsCryptic(filename string) bool {
	stem := strings.ToLower(strings.TrimSuffix(filename, filepath.Ext(filename)))
	switch {
	case len(stem) < 5:
		return true
	case hexStem.MatchString(stem):
		return true
	case digitStem.MatchString(stem):
		return true
	case cameraStem.MatchString(stem):
		return true
	case uuidStem.MatchString(stem):
		return true
	case unixTimeStem.MatchString(stem):
		return true
	}
	return false
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}

// truncate cuts s to at most n runes without splitting a multi-byte sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

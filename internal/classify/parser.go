package classify

import (
	"regexp"
	"strings"
	"time"
)

// recordFields is the number of pipe-delimited fields a classification line carries.
const recordFields = 4

var (
	// markdownNoise strips code fences, emphasis, and heading characters a
	// model may wrap its answer in. Underscores stay: they are filename
	// content, not emphasis.
	markdownNoise = regexp.MustCompile("[`*#]+")
	// resultLabel matches an optional leading answer label.
	resultLabel = regexp.MustCompile(`(?i)^(ergebnis|result|antwort)\s*:\s*`)
	// yearToken finds a plausible 4-digit year anywhere in the year field, so
	// "Jahr: 2024" or "ca. 2023" still parse.
	yearToken = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// parseRecord locates the pipe-delimited classification record in a free-form
// model response. Lines are scanned from the end backward, because models
// often prefix reasoning text but place the structured answer last. The first
// line (from the end) yielding at least four non-empty trimmed fields wins.
func parseRecord(raw string) ([recordFields]string, bool) {
	var record [recordFields]string
	lines := strings.Split(raw, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		line = markdownNoise.ReplaceAllString(line, "")
		line = resultLabel.ReplaceAllString(strings.TrimSpace(line), "")
		parts := strings.Split(line, "|")
		if len(parts) < recordFields {
			continue
		}
		ok := true
		for j := 0; j < recordFields; j++ {
			parts[j] = strings.TrimSpace(parts[j])
			if parts[j] == "" {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		copy(record[:], parts[:recordFields])
		return record, true
	}
	return record, false
}

// validateYear returns a 4-digit year extracted from field, or the current
// year when the field contains none.
func validateYear(field string, now time.Time) string {
	if y := yearToken.FindString(field); y != "" {
		return y
	}
	return now.Format("2006")
}

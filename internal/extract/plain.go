package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain returns content as a string, replacing invalid UTF-8 sequences
// so a latin-1 CSV or a binary-tainted text file never poisons the prompt.
func extractPlain(_ string, content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}

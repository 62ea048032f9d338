package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages bounds extraction latency on large scans. The classifier only
// needs the leading pages to categorize a document.
const maxPDFPages = 8

func extractPDF(_ string, content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	pages := r.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}
	var buf bytes.Buffer
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single damaged page should not discard text from the others.
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

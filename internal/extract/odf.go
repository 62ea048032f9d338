package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// odfContentPath is the main content inside OpenDocument files (.odt, .ods, .odp).
const odfContentPath = "content.xml"

// OpenDocument text lives in text:p, text:span, and text:h elements. Separate
// patterns keep matching opening and closing tags paired.
var (
	odfTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfTextH    = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

// extractODF extracts text from OpenDocument bytes. One strategy covers
// writer, spreadsheet, and presentation files: all three are zips with the
// same content.xml text model.
func extractODF(_ string, content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract ODF: not a zip: %w", err)
	}
	contentXML, err := readZipEntry(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("extract ODF: %w", err)
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract ODF: %s not found", odfContentPath)
	}
	s := string(contentXML)
	var b strings.Builder
	for _, re := range []*regexp.Regexp{odfTextP, odfTextSpan, odfTextH} {
		for _, p := range re.FindAllStringSubmatch(s, -1) {
			if t := strings.TrimSpace(p[1]); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(t)
			}
		}
	}
	return b.String(), nil
}

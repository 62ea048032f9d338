package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// pptxSlidePrefix is the path prefix for slide XML files inside a .pptx zip.
const pptxSlidePrefix = "ppt/slides/slide"

// atTag matches <a:t>text</a:t> with any attributes.
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// extractPPTX extracts text from .pptx bytes by collecting all <a:t> text
// nodes from every ppt/slides/slideN.xml.
func extractPPTX(_ string, content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract PPTX: not a zip: %w", err)
	}
	var buf strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, pptxSlidePrefix) || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		slideXML, err := readZipEntry(zr, f.Name)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: %w", err)
		}
		for _, p := range atTag.FindAllStringSubmatch(string(slideXML), -1) {
			if s := strings.TrimSpace(p[1]); s != "" {
				if buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(s)
			}
		}
	}
	return buf.String(), nil
}

package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return New(zap.NewNop())
}

// buildZip creates an in-memory zip with the given entries.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractBytes_plain(t *testing.T) {
	e := newTestExtractor()
	if got := e.ExtractBytes("note.txt", []byte("Hello world\nLine 2")); got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := newTestExtractor()
	if got := e.ExtractBytes("data.csv", []byte("hello\x80world")); got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_truncatesToCap(t *testing.T) {
	e := newTestExtractor()
	got := e.ExtractBytes("big.md", []byte(strings.Repeat("ä", MaxTextLen+500)))
	if n := len([]rune(got)); n != MaxTextLen {
		t.Errorf("excerpt length = %d runes, want %d", n, MaxTextLen)
	}
}

func TestExtractBytes_docx(t *testing.T) {
	content := buildZip(t, map[string]string{
		"word/document.xml": `<w:document><w:p w:rsidR="0"><w:r><w:t>Mietvertrag</w:t></w:r>` +
			`<w:r><w:t xml:space="preserve">Hauptstrasse 1</w:t></w:r></w:p></w:document>`,
	})
	e := newTestExtractor()
	if got := e.ExtractBytes("vertrag.docx", content); got != "Mietvertrag Hauptstrasse 1" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_pptx(t *testing.T) {
	content := buildZip(t, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld><a:t>Quartalsbericht</a:t><a:t xml:space="preserve">Q3</a:t></p:sld>`,
	})
	e := newTestExtractor()
	if got := e.ExtractBytes("deck.pptx", content); got != "Quartalsbericht Q3" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_odt(t *testing.T) {
	content := buildZip(t, map[string]string{
		"content.xml": `<office:body><text:h text:style-name="H1">Protokoll</text:h>` +
			`<text:p>Sitzung vom 3. Mai</text:p></office:body>`,
	})
	e := newTestExtractor()
	got := e.ExtractBytes("protokoll.odt", content)
	if !strings.Contains(got, "Protokoll") || !strings.Contains(got, "Sitzung vom 3. Mai") {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Posten")
	f.SetCellValue("Sheet1", "B1", "Betrag")
	f.SetCellValue("Sheet1", "A2", "Miete")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	e := newTestExtractor()
	got := e.ExtractBytes("kosten.xlsx", buf.Bytes())
	if got != "Posten | Betrag\nMiete" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_corruptDocumentYieldsEmpty(t *testing.T) {
	e := newTestExtractor()
	for _, name := range []string{"broken.pdf", "broken.docx", "broken.xlsx", "broken.odp"} {
		if got := e.ExtractBytes(name, []byte("not a real document")); got != "" {
			t.Errorf("%s: got %q, want empty", name, got)
		}
	}
}

func TestExtractBytes_legacyBinaryFormatsYieldEmpty(t *testing.T) {
	e := newTestExtractor()
	for _, name := range []string{"old.doc", "old.xls", "old.ppt"} {
		if got := e.ExtractBytes(name, []byte{0xd0, 0xcf, 0x11, 0xe0}); got != "" {
			t.Errorf("%s: got %q, want empty", name, got)
		}
	}
}

func TestExtractBytes_heicPlaceholder(t *testing.T) {
	e := newTestExtractor()
	got := e.ExtractBytes("IMG_0042.heic", []byte{0x00, 0x01})
	if got != "[Scan/Bild: IMG_0042.heic]" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_imageWithoutEngineOrDecodablePayload(t *testing.T) {
	// Regardless of whether tesseract is installed, an undecodable image body
	// must degrade to the placeholder, never to an error or empty text.
	e := newTestExtractor()
	got := e.ExtractBytes("scan001.jpg", []byte("definitely not a jpeg"))
	if got != "[Scan/Bild: scan001.jpg]" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_file(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "brief.txt")
	if err := os.WriteFile(path, []byte("Sehr geehrte Damen und Herren"), 0600); err != nil {
		t.Fatal(err)
	}
	e := newTestExtractor()
	if got := e.Extract(path); got != "Sehr geehrte Damen und Herren" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_missingFileYieldsEmpty(t *testing.T) {
	e := newTestExtractor()
	if got := e.Extract(filepath.Join(t.TempDir(), "gone.pdf")); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestSupported(t *testing.T) {
	e := newTestExtractor()
	for _, ext := range []string{".pdf", ".docx", ".xlsx", ".jpg", ".heic", ".odp", ".md"} {
		if !e.Supported(ext) {
			t.Errorf("Supported(%q) = false", ext)
		}
	}
	for _, ext := range []string{".exe", ".zip", ".doc"} {
		if e.Supported(ext) {
			t.Errorf("Supported(%q) = true", ext)
		}
	}
}

// Package extract produces best-effort plain-text excerpts from document files.
// Extraction is dispatched by file extension through a strategy registry;
// strategies whose backing engine is unavailable are registered as placeholder
// strategies instead, so the registry is always total over supported formats.
package extract

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// MaxTextLen caps every excerpt handed to the classifier, bounding request size.
const MaxTextLen = 3000

// Strategy extracts text from one document format. name is the base filename
// (used for placeholder output), content is the full file body.
type Strategy func(name string, content []byte) (string, error)

// Extractor dispatches by extension to a format strategy.
type Extractor struct {
	strategies map[string]Strategy
	logger     *zap.Logger
}

// New builds an extractor with all format strategies registered. Availability
// of the OCR engine is probed once here; when it is missing, image formats
// degrade to a placeholder strategy rather than failing at extraction time.
func New(logger *zap.Logger) *Extractor {
	e := &Extractor{
		strategies: make(map[string]Strategy),
		logger:     logger,
	}
	e.register(extractPDF, ".pdf")
	e.register(extractDocx, ".docx")
	e.register(extractExcel, ".xlsx", ".xlsm")
	e.register(extractPlain, ".txt", ".csv", ".md", ".rtf")
	e.register(extractPPTX, ".pptx")
	e.register(extractODF, ".odt", ".ods", ".odp")

	ocr := newOCREngine(logger)
	e.register(ocr.extract, ".jpg", ".jpeg", ".png", ".webp", ".tiff", ".tif", ".bmp")
	// No pure-Go decoder exists for HEIC/HEIF; these always get the placeholder.
	e.register(placeholderStrategy, ".heic", ".heif")

	// Legacy binary Office formats (.doc, .xls, .ppt) have no strategy and
	// yield empty text; they are still archivable.
	return e
}

func (e *Extractor) register(s Strategy, exts ...string) {
	for _, ext := range exts {
		e.strategies[ext] = s
	}
}

// Extract reads the file at path and returns a text excerpt truncated to
// MaxTextLen. Extraction is best-effort: unreadable files, unsupported
// formats, and malformed documents all yield the empty string, never an error.
func (e *Extractor) Extract(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		e.logger.Debug("extract: read failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	return e.ExtractBytes(filepath.Base(path), content)
}

// ExtractBytes extracts text from content, dispatching on the extension of name.
func (e *Extractor) ExtractBytes(name string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	strategy, ok := e.strategies[ext]
	if !ok {
		return ""
	}
	text, err := strategy(name, content)
	if err != nil {
		e.logger.Debug("extract: strategy failed", zap.String("name", name), zap.Error(err))
		return ""
	}
	return Truncate(text, MaxTextLen)
}

// Supported reports whether ext (with leading dot, any case) maps to a strategy.
func (e *Extractor) Supported(ext string) bool {
	_, ok := e.strategies[strings.ToLower(ext)]
	return ok
}

// Truncate cuts s to at most n runes without splitting a multi-byte sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// placeholderStrategy identifies the file instead of extracting from it. The
// classifier can still work from the original filename.
func placeholderStrategy(name string, _ []byte) (string, error) {
	return "[Scan/Bild: " + name + "]", nil
}

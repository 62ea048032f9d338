// Package classify obtains a category/subcategory/year/filename record for a
// document from a chat model, tolerating the unreliable output formatting such
// models produce.
package classify

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/sanitize"
)

// Fallback constants used when the classifier fails or returns garbage.
const (
	FallbackCategory    = "Unsortiert"
	FallbackSubcategory = "Allgemein"
	unknownDocumentStem = "Unbekanntes_Dokument"
	maxFallbackStemLen  = 40
)

// Result is the classification of one document, already sanitized into
// filesystem-safe segments.
type Result struct {
	Category    string
	Subcategory string
	Year        string
	Filename    string // includes the original extension
	Renamed     bool
}

// Classifier is the external model collaborator. The core never depends on
// which backend answers.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, prompt string) (string, error)

func (f ClassifierFunc) Classify(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Categorizer asks a Classifier for a classification and converts the answer
// into a safe Result, falling back deterministically when the model fails.
type Categorizer struct {
	classifier Classifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewCategorizer(c Classifier, logger *zap.Logger) *Categorizer {
	return &Categorizer{classifier: c, logger: logger, now: time.Now}
}

// Categorize never fails: classifier errors, timeouts, and unparseable
// responses all yield the deterministic fallback result, so the pipeline can
// always file the document.
func (c *Categorizer) Categorize(ctx context.Context, filename, text string) Result {
	now := c.now()
	ext := strings.ToLower(filepath.Ext(filename))
	cryptic := sanitize.IsCryptic(filename)

	if c.classifier == nil {
		return Fallback(filename, cryptic, now)
	}
	raw, err := c.classifier.Classify(ctx, BuildPrompt(filename, text, cryptic, now))
	if err != nil {
		c.logger.Debug("classify: model call failed, using fallback",
			zap.String("file", filename), zap.Error(err))
		return Fallback(filename, cryptic, now)
	}

	fields, ok := parseRecord(raw)
	if !ok {
		c.logger.Debug("classify: unparseable response, using fallback",
			zap.String("file", filename))
		return Fallback(filename, cryptic, now)
	}

	name := sanitize.CleanFilename(fields[3], ext)
	category := sanitize.Clean(fields[0])
	if category == "" {
		category = FallbackCategory
	}
	sub := sanitize.Clean(fields[1])
	if sub == "" {
		sub = FallbackSubcategory
	}
	return Result{
		Category:    category,
		Subcategory: sub,
		Year:        validateYear(fields[2], now),
		Filename:    name,
		Renamed:     cryptic || !strings.EqualFold(name, filename),
	}
}

// Fallback synthesizes a classification without the model: timestamp plus the
// truncated original stem, or a generic unknown-document stem when the
// original name carries no information either.
func Fallback(filename string, cryptic bool, now time.Time) Result {
	ext := strings.ToLower(filepath.Ext(filename))
	ts := now.Format("20060102_150405")
	var name string
	if cryptic {
		name = unknownDocumentStem + "_" + ts + ext
	} else {
		stem := strings.TrimSuffix(filename, filepath.Ext(filename))
		if len(stem) > maxFallbackStemLen {
			stem = stem[:maxFallbackStemLen]
		}
		name = sanitize.CleanFilename(ts+"_"+stem, ext)
	}
	return Result{
		Category:    FallbackCategory,
		Subcategory: FallbackSubcategory,
		Year:        now.Format("2006"),
		Filename:    name,
		Renamed:     false,
	}
}

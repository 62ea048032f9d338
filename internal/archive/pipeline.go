package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/fingerprint"
	"github.com/ablagehq/ablage/internal/models"
	"github.com/ablagehq/ablage/internal/sanitize"
)

// Sort runs the archival pipeline over every staged file: fingerprint,
// duplicate check, extract, classify, sanitize, path-safety check, version
// resolution, commit, report. Files are processed one at a time in name order
// because version resolution depends on the filesystem state left by the
// previous file. The index is saved once at the end of the batch; per-file
// failures are reported and do not abort the run.
func (s *Service) Sort(ctx context.Context) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := loadSettings(s.baseDir)
	if err := s.initDirs(cfg); err != nil {
		return nil, fmt.Errorf("init directories: %w", err)
	}

	names, err := listStagedNames(cfg.ImportDir)
	if err != nil {
		return nil, fmt.Errorf("scan staging: %w", err)
	}

	report := &models.Report{BatchID: uuid.NewString()}
	if len(names) == 0 {
		return report, nil
	}

	idx := LoadIndex(s.indexPath(), s.logger)
	for _, name := range names {
		outcome := s.processFile(ctx, cfg, idx, name)
		report.Outcomes = append(report.Outcomes, outcome)
		s.logger.Info("archival outcome",
			zap.String("batch", report.BatchID),
			zap.String("file", name),
			zap.String("kind", string(outcome.Kind)))
	}
	if err := idx.Save(s.indexPath()); err != nil {
		return report, fmt.Errorf("save index: %w", err)
	}
	return report, nil
}

// processFile drives one staged file through the pipeline states.
func (s *Service) processFile(ctx context.Context, cfg Settings, idx *Index, name string) models.Outcome {
	src := filepath.Join(cfg.ImportDir, name)
	ext := strings.ToLower(filepath.Ext(name))

	// Fingerprint. An empty hash disables duplicate detection for this file
	// but never blocks archival.
	hash := fingerprint.Hash(src)

	if hash != "" {
		if existing, ok := idx.Hashes[hash]; ok {
			if err := os.Remove(src); err != nil {
				return models.Outcome{Kind: models.OutcomeFailed, Original: name,
					Detail: fmt.Sprintf("Duplikat erkannt, Löschen fehlgeschlagen: %v", err)}
			}
			return models.Outcome{Kind: models.OutcomeDuplicate, Original: name, Detail: existing}
		}
	}

	text := s.extractor.Extract(src)
	res := s.categorizer.Categorize(ctx, name, text)

	// The archived file always keeps its original extension, whatever name
	// the classifier proposed.
	if !strings.HasSuffix(strings.ToLower(res.Filename), ext) {
		res.Filename = strings.TrimSuffix(res.Filename, filepath.Ext(res.Filename)) + ext
	}

	destDir, err := securePath(cfg.ArchiveDir, filepath.Join(res.Category, res.Subcategory, res.Year))
	if err != nil {
		s.logger.Warn("destination escapes archive root",
			zap.String("file", name),
			zap.String("category", res.Category),
			zap.String("subcategory", res.Subcategory))
		return models.Outcome{Kind: models.OutcomeSecurityWarning, Original: name}
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return models.Outcome{Kind: models.OutcomeFailed, Original: name, Detail: err.Error()}
	}

	want := filepath.Join(destDir, res.Filename)
	final := nextVersion(want)
	if err := moveFile(src, final); err != nil {
		return models.Outcome{Kind: models.OutcomeFailed, Original: name, Detail: err.Error()}
	}

	rel, err := filepath.Rel(cfg.ArchiveDir, final)
	if err != nil {
		rel = final
	}
	rel = filepath.ToSlash(rel)

	var size int64
	if info, statErr := os.Stat(final); statErr == nil {
		size = info.Size()
	}
	idx.Set(rel, hash, models.Entry{
		Original:    name,
		Category:    res.Category,
		Subcategory: res.Subcategory,
		Year:        res.Year,
		Hash:        hash,
		Size:        size,
		ArchivedAt:  time.Now(),
		Renamed:     res.Renamed,
	})

	kind := models.OutcomeArchived
	if final != want {
		kind = models.OutcomeNewVersion
	}
	return models.Outcome{
		Kind:        kind,
		Original:    name,
		FinalName:   filepath.Base(final),
		Path:        rel,
		Category:    res.Category,
		Subcategory: res.Subcategory,
		Year:        res.Year,
		Renamed:     res.Renamed,
	}
}

// nextVersion returns want if free, otherwise probes stem_v2, stem_v3, …
// until an unused path is found. An existing _vN tag on the stem is stripped
// first so versions do not stack.
func nextVersion(want string) string {
	if _, err := os.Stat(want); os.IsNotExist(err) {
		return want
	}
	dir := filepath.Dir(want)
	ext := filepath.Ext(want)
	stem := sanitize.StripVersionTag(strings.TrimSuffix(filepath.Base(want), ext))
	for n := 2; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_v%d%s", stem, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// moveFile renames src to dst, falling back to copy+remove when the archive
// lives on a different filesystem than staging.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		_ = os.Remove(dst)
		return copyErr
	}
	if closeErr != nil {
		_ = os.Remove(dst)
		return closeErr
	}
	return os.Remove(src)
}

// listStagedNames returns the archivable files in the import directory, sorted by name.
func listStagedNames(importDir string) ([]string, error) {
	entries, err := os.ReadDir(importDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && Allowed(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

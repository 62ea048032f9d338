package archive

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/sanitize"
)

// Delete removes an archived file by its slash-relative path and prunes it
// from the index. When password protection is active, an incorrect password
// leaves file and index untouched. A file already gone from disk is still
// pruned from the index: stale entries are never resurrected.
func (s *Service) Delete(rel, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := loadSettings(s.baseDir)
	if !cfg.verifyPassword(password) {
		return "", ErrWrongPassword
	}
	abs, err := securePath(cfg.ArchiveDir, rel)
	if err != nil {
		return "", err
	}

	idx := LoadIndex(s.indexPath(), s.logger)
	norm := path.Clean(filepath.ToSlash(rel))

	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		idx.Remove(norm)
		if err := idx.Save(s.indexPath()); err != nil {
			return "", err
		}
		return fmt.Sprintf("Datei nicht gefunden, aber aus Index entfernt: %s", norm), nil
	}

	if err := os.Remove(abs); err != nil {
		return "", fmt.Errorf("löschen: %w", err)
	}
	pruneEmptyDirs(filepath.Dir(abs), cfg.ArchiveDir)

	idx.Remove(norm)
	if err := idx.Save(s.indexPath()); err != nil {
		return "", err
	}
	s.logger.Info("archived file deleted", zap.String("path", norm))
	return fmt.Sprintf("Gelöscht: %s", norm), nil
}

// Relocate moves an archived file into a new category/subcategory, preserving
// its year and filename. The destination is subject to the same sanitization,
// containment, and version-collision rules as initial archival.
func (s *Service) Relocate(rel, newCategory, newSubcategory, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := loadSettings(s.baseDir)
	if !cfg.verifyPassword(password) {
		return "", ErrWrongPassword
	}

	category := sanitize.Clean(newCategory)
	if category == "" {
		return "", fmt.Errorf("Kategorie erforderlich")
	}
	sub := sanitize.Clean(newSubcategory)
	if sub == "" {
		sub = "Allgemein"
	}

	srcAbs, err := securePath(cfg.ArchiveDir, rel)
	if err != nil {
		return "", err
	}
	info, statErr := os.Stat(srcAbs)
	if statErr != nil || info.IsDir() {
		return "", ErrNotFound
	}

	idx := LoadIndex(s.indexPath(), s.logger)
	norm := path.Clean(filepath.ToSlash(rel))
	entry, known := idx.Documents[norm]

	year := entry.Year
	if year == "" {
		// Index may predate this file; recover the year from the path layout.
		if parts := strings.Split(norm, "/"); len(parts) >= 4 {
			year = parts[2]
		} else {
			year = "0000"
		}
	}
	filename := path.Base(norm)

	destDir, err := securePath(cfg.ArchiveDir, filepath.Join(category, sub, year))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	final := nextVersion(filepath.Join(destDir, filename))
	if err := moveFile(srcAbs, final); err != nil {
		return "", fmt.Errorf("verschieben: %w", err)
	}
	pruneEmptyDirs(filepath.Dir(srcAbs), cfg.ArchiveDir)

	newRel, relErr := filepath.Rel(cfg.ArchiveDir, final)
	if relErr != nil {
		newRel = final
	}
	newRel = filepath.ToSlash(newRel)

	if known {
		entry.Category = category
		entry.Subcategory = sub
		entry.Year = year
		idx.Rename(norm, newRel, entry)
	}
	if err := idx.Save(s.indexPath()); err != nil {
		return "", err
	}
	s.logger.Info("archived file relocated", zap.String("from", norm), zap.String("to", newRel))
	return fmt.Sprintf("Verschoben: %s → %s", norm, newRel), nil
}

// pruneEmptyDirs removes now-empty ancestor directories from dir upward,
// stopping at (and never removing) root.
func pruneEmptyDirs(dir, root string) {
	rootClean := filepath.Clean(root)
	for {
		d := filepath.Clean(dir)
		if d == rootClean || !strings.HasPrefix(d, rootClean+string(os.PathSeparator)) {
			return
		}
		entries, err := os.ReadDir(d)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(d); err != nil {
			return
		}
		dir = filepath.Dir(d)
	}
}

// Package archive implements the document ingestion and archival pipeline: it
// fingerprints staged files, detects duplicates, obtains an AI classification,
// and commits documents into a versioned, path-safe archive tree backed by a
// persisted metadata index.
package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/classify"
	"github.com/ablagehq/ablage/internal/extract"
)

var (
	// ErrWrongPassword is returned when a protected operation is attempted
	// with a missing or incorrect password. No mutation happens in that case.
	ErrWrongPassword = errors.New("falsches Passwort")
	// ErrUnsafePath is returned when a path resolves outside its root.
	ErrUnsafePath = errors.New("ungültiger Pfad")
	// ErrNotFound is returned for operations on files that do not exist.
	ErrNotFound = errors.New("Datei nicht gefunden")
)

// AllowedExtensions lists the file types accepted into staging and scanned
// for archival, shared between upload and pipeline.
var AllowedExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".doc": true, ".xlsx": true, ".xls": true,
	".xlsm": true, ".txt": true, ".csv": true, ".md": true, ".rtf": true,
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".tiff": true,
	".tif": true, ".bmp": true, ".heic": true, ".heif": true, ".odt": true,
	".ods": true, ".odp": true, ".pptx": true, ".ppt": true,
}

// Allowed reports whether filename has an accepted extension.
func Allowed(filename string) bool {
	return AllowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Service owns the archive tree and the index file; it is the only component
// that writes either. Mutating operations (Sort, Delete, Relocate, settings
// changes) are serialized by a mutex around the load-index → mutate → save-index
// cycle; read-only browsing does not take the lock.
type Service struct {
	baseDir     string
	extractor   *extract.Extractor
	categorizer *classify.Categorizer
	logger      *zap.Logger
	mu          sync.Mutex
}

// NewService creates the archive service rooted at baseDir. The settings,
// index, and default archive/import directories all live under baseDir.
func NewService(baseDir string, ex *extract.Extractor, cat *classify.Categorizer, logger *zap.Logger) *Service {
	return &Service{
		baseDir:     baseDir,
		extractor:   ex,
		categorizer: cat,
		logger:      logger,
	}
}

func (s *Service) indexPath() string {
	return filepath.Join(s.baseDir, indexFile)
}

// initDirs makes sure base, archive, and import directories exist.
func (s *Service) initDirs(cfg Settings) error {
	for _, dir := range []string{s.baseDir, cfg.ArchiveDir, cfg.ImportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// securePath joins rel onto root and verifies the result stays inside root.
// This is the hard security boundary against traversal via classifier- or
// caller-controlled path strings.
func securePath(root, rel string) (string, error) {
	abs := filepath.Clean(filepath.Join(root, filepath.FromSlash(rel)))
	rootAbs := filepath.Clean(root)
	if abs != rootAbs && !strings.HasPrefix(abs, rootAbs+string(os.PathSeparator)) {
		return "", ErrUnsafePath
	}
	return abs, nil
}

// ResolveArchivePath maps a slash-relative archive path to an absolute path,
// rejecting anything that escapes the archive root or does not exist.
// Used by download and preview handlers.
func (s *Service) ResolveArchivePath(rel string) (string, error) {
	cfg := loadSettings(s.baseDir)
	abs, err := securePath(cfg.ArchiveDir, rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return abs, nil
}

// Settings returns the current runtime configuration. The password hash is
// included; handlers decide what to expose.
func (s *Service) Settings() Settings {
	return loadSettings(s.baseDir)
}

// UpdateSettings changes archive/import paths and optionally sets a new
// password. When protection is already active the current password must be
// supplied; on mismatch nothing is changed.
func (s *Service) UpdateSettings(archiveDir, importDir, password, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := loadSettings(s.baseDir)
	if cfg.PasswordActive && cfg.PasswordHash != "" && !cfg.verifyPassword(password) {
		return ErrWrongPassword
	}
	if archiveDir != "" {
		p, err := filepath.Abs(expandHome(archiveDir))
		if err != nil {
			return err
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
		cfg.ArchiveDir = p
	}
	if importDir != "" {
		p, err := filepath.Abs(expandHome(importDir))
		if err != nil {
			return err
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
		cfg.ImportDir = p
	}
	if newPassword != "" {
		cfg.PasswordHash = hashPassword(newPassword)
		cfg.PasswordActive = true
	}
	return cfg.save(s.baseDir)
}

// RemovePassword disables password protection, verifying the current password first.
func (s *Service) RemovePassword(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := loadSettings(s.baseDir)
	if cfg.PasswordActive && !cfg.verifyPassword(password) {
		return ErrWrongPassword
	}
	cfg.PasswordActive = false
	cfg.PasswordHash = ""
	return cfg.save(s.baseDir)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return os.ExpandEnv(p)
}

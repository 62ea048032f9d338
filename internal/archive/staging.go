package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ablagehq/ablage/internal/models"
	"github.com/ablagehq/ablage/internal/sanitize"
)

// ListStaged returns the archivable files waiting in the import directory.
func (s *Service) ListStaged() ([]models.StagedFile, error) {
	cfg := loadSettings(s.baseDir)
	if err := s.initDirs(cfg); err != nil {
		return nil, err
	}
	names, err := listStagedNames(cfg.ImportDir)
	if err != nil {
		return nil, err
	}
	files := make([]models.StagedFile, 0, len(names))
	for _, name := range names {
		info, statErr := os.Stat(filepath.Join(cfg.ImportDir, name))
		if statErr != nil {
			continue
		}
		files = append(files, models.StagedFile{
			Name: name,
			Size: info.Size(),
			Ext:  strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		})
	}
	return files, nil
}

// SaveUpload stores an uploaded file in staging under a safe version of its
// name, appending _1, _2, … on collision. The stored name is returned.
// Files with disallowed extensions are rejected.
func (s *Service) SaveUpload(filename string, r io.Reader) (string, error) {
	cfg := loadSettings(s.baseDir)
	if err := s.initDirs(cfg); err != nil {
		return "", err
	}

	name := safeUploadName(filename)
	if name == "" || !Allowed(name) {
		return "", fmt.Errorf("Format nicht unterstützt: %s", filename)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	dst := filepath.Join(cfg.ImportDir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(cfg.ImportDir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return filepath.Base(dst), nil
}

// DeleteStaged removes a file from the import directory by name.
func (s *Service) DeleteStaged(name string) error {
	cfg := loadSettings(s.baseDir)
	abs, err := securePath(cfg.ImportDir, filepath.Base(name))
	if err != nil {
		return err
	}
	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		return ErrNotFound
	}
	return os.Remove(abs)
}

// ResolveStagedPath maps a staged filename to an absolute path for preview,
// with the same containment discipline as archive paths.
func (s *Service) ResolveStagedPath(name string) (string, error) {
	cfg := loadSettings(s.baseDir)
	abs, err := securePath(cfg.ImportDir, filepath.Base(name))
	if err != nil {
		return "", err
	}
	info, statErr := os.Stat(abs)
	if statErr != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return abs, nil
}

// safeUploadName reduces an untrusted upload filename to a bare safe name:
// any directory part is dropped, the stem is sanitized, the extension kept.
func safeUploadName(filename string) string {
	base := filepath.Base(filepath.FromSlash(filename))
	ext := strings.ToLower(filepath.Ext(base))
	stem := sanitize.Clean(strings.TrimSuffix(base, filepath.Ext(base)))
	stem = strings.Trim(stem, "._-")
	if stem == "" {
		return ""
	}
	return stem + ext
}

package archive

import (
	"crypto/subtle"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ablagehq/ablage/internal/fingerprint"
)

// settingsFile holds the runtime archive configuration inside the base directory.
const settingsFile = "dms_config.json"

// Settings is the persisted runtime configuration of the archive. It is
// mutable through the settings API, unlike the application config.
type Settings struct {
	ArchiveDir     string `json:"archiv_pfad"`
	ImportDir      string `json:"import_pfad"`
	PasswordHash   string `json:"passwort_hash"`
	PasswordActive bool   `json:"passwort_aktiv"`
}

// defaultSettings places archive and import directories under the base dir.
func defaultSettings(baseDir string) Settings {
	return Settings{
		ArchiveDir: filepath.Join(baseDir, "archiv"),
		ImportDir:  filepath.Join(baseDir, "import"),
	}
}

// loadSettings reads the settings file, substituting defaults for missing
// fields. A missing or unreadable file yields pure defaults; configuration
// corruption is never fatal.
func loadSettings(baseDir string) Settings {
	s := defaultSettings(baseDir)
	data, err := os.ReadFile(filepath.Join(baseDir, settingsFile))
	if err != nil {
		return s
	}
	// Unmarshal over the defaults so absent fields keep their default values.
	_ = json.Unmarshal(data, &s)
	if s.ArchiveDir == "" {
		s.ArchiveDir = defaultSettings(baseDir).ArchiveDir
	}
	if s.ImportDir == "" {
		s.ImportDir = defaultSettings(baseDir).ImportDir
	}
	return s
}

// save writes the settings atomically (temp file + rename).
func (s Settings) save(baseDir string) error {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(baseDir, settingsFile), data)
}

// hashPassword returns the hex SHA-256 digest stored for password checks.
func hashPassword(pw string) string {
	return fingerprint.HashBytes([]byte(pw))
}

// verifyPassword reports whether pw matches the stored hash. When no password
// protection is active, every password (including empty) passes. The contract
// is a plain SHA-256 equality check against the stored hex digest.
func (s Settings) verifyPassword(pw string) bool {
	if !s.PasswordActive || s.PasswordHash == "" {
		return true
	}
	sum := fingerprint.HashBytes([]byte(pw))
	return subtle.ConstantTimeCompare([]byte(sum), []byte(s.PasswordHash)) == 1
}

// atomicWrite writes data to path so a crash mid-write cannot corrupt a
// previously valid file.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ablagehq/ablage/internal/archive"
)

// previewMimeTypes lists the formats the browser can render inline.
var previewMimeTypes = map[string]string{
	".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
	".webp": "image/webp", ".bmp": "image/bmp", ".tiff": "image/tiff",
	".tif": "image/tiff", ".pdf": "application/pdf",
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.archive.Stats())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.archive.Tree())
}

func (s *Server) handleImportList(w http.ResponseWriter, r *http.Request) {
	files, err := s.archive.ListStaged()
	if err != nil {
		s.logger.Error("import list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, files)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, "ungültiger Upload")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "Keine Dateien")
		return
	}

	uploaded := []string{}
	failed := []string{}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", fh.Filename, err))
			continue
		}
		name, err := s.archive.SaveUpload(fh.Filename, f)
		f.Close()
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", fh.Filename, err))
			continue
		}
		uploaded = append(uploaded, name)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"hochgeladen": uploaded,
		"fehler":      failed,
		"anzahl":      len(uploaded),
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	report, err := s.archive.Sort(r.Context())
	if err != nil {
		s.logger.Error("sort failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"ergebnis": report.Summary()})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.respondJSON(w, http.StatusOK, []struct{}{})
		return
	}
	s.respondJSON(w, http.StatusOK, s.archive.Search(q))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("pfad")
	abs, ok := s.resolveArchive(w, rel)
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(abs)))
	http.ServeFile(w, r, abs)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("pfad")
	abs, ok := s.resolveArchive(w, rel)
	if !ok {
		return
	}
	s.servePreview(w, r, abs)
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "Kein Dateiname")
		return
	}
	abs, err := s.archive.ResolveStagedPath(name)
	if err != nil {
		s.respondResolveError(w, err)
		return
	}
	s.servePreview(w, r, abs)
}

func (s *Server) handleDeleteImport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "Kein Dateiname")
		return
	}
	if err := s.archive.DeleteStaged(name); err != nil {
		s.respondResolveError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type deleteArchiveRequest struct {
	Path     string `json:"pfad"`
	Password string `json:"passwort"`
}

func (s *Server) handleDeleteArchive(w http.ResponseWriter, r *http.Request) {
	var req deleteArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "ungültiger Request")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		s.respondError(w, http.StatusBadRequest, "Kein Pfad angegeben")
		return
	}
	msg, err := s.archive.Delete(req.Path, req.Password)
	if err != nil {
		if errors.Is(err, archive.ErrWrongPassword) {
			s.respondJSON(w, http.StatusForbidden,
				map[string]interface{}{"error": "Falsches Passwort", "pw_required": true})
			return
		}
		s.respondResolveError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": msg})
}

type moveRequest struct {
	Path        string `json:"pfad"`
	Category    string `json:"kategorie"`
	Subcategory string `json:"unterkategorie"`
	Password    string `json:"passwort"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "ungültiger Request")
		return
	}
	if strings.TrimSpace(req.Path) == "" || strings.TrimSpace(req.Category) == "" {
		s.respondError(w, http.StatusBadRequest, "Pfad und Kategorie erforderlich")
		return
	}
	msg, err := s.archive.Relocate(req.Path, req.Category, req.Subcategory, req.Password)
	if err != nil {
		if errors.Is(err, archive.ErrWrongPassword) {
			s.respondJSON(w, http.StatusForbidden,
				map[string]interface{}{"error": "Falsches Passwort", "pw_required": true})
			return
		}
		s.respondResolveError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": msg})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg := s.archive.Settings()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"archiv_pfad":    cfg.ArchiveDir,
		"import_pfad":    cfg.ImportDir,
		"passwort_aktiv": cfg.PasswordActive,
	})
}

type settingsRequest struct {
	ArchiveDir  string `json:"archiv_pfad"`
	ImportDir   string `json:"import_pfad"`
	Password    string `json:"passwort"`
	NewPassword string `json:"passwort_neu"`
}

func (s *Server) handleSettingsSet(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "ungültiger Request")
		return
	}
	if err := s.archive.UpdateSettings(req.ArchiveDir, req.ImportDir, req.Password, req.NewPassword); err != nil {
		if errors.Is(err, archive.ErrWrongPassword) {
			s.respondError(w, http.StatusForbidden, "Falsches Passwort")
			return
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "Gespeichert"})
}

func (s *Server) handleRemovePassword(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "ungültiger Request")
		return
	}
	if err := s.archive.RemovePassword(req.Password); err != nil {
		if errors.Is(err, archive.ErrWrongPassword) {
			s.respondError(w, http.StatusForbidden, "Falsches Passwort")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "message": "Passwortschutz entfernt"})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.kernel == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Kein KI-Provider konfiguriert")
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "ungültiger Request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.respondError(w, http.StatusBadRequest, "Keine Nachricht")
		return
	}
	reply := s.kernel.Chat(r.Context(), req.Message)
	s.respondJSON(w, http.StatusOK, map[string]string{
		"antwort":  reply,
		"provider": s.kernel.ProviderName(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveArchive maps the pfad query parameter to an absolute file, writing
// the error response itself when resolution fails.
func (s *Server) resolveArchive(w http.ResponseWriter, rel string) (string, bool) {
	if strings.TrimSpace(rel) == "" {
		s.respondError(w, http.StatusBadRequest, "Kein Pfad angegeben")
		return "", false
	}
	abs, err := s.archive.ResolveArchivePath(rel)
	if err != nil {
		s.respondResolveError(w, err)
		return "", false
	}
	return abs, true
}

func (s *Server) servePreview(w http.ResponseWriter, r *http.Request, abs string) {
	mime, ok := previewMimeTypes[strings.ToLower(filepath.Ext(abs))]
	if !ok {
		s.respondError(w, http.StatusUnsupportedMediaType, "Vorschau nicht verfügbar")
		return
	}
	w.Header().Set("Content-Type", mime)
	http.ServeFile(w, r, abs)
}

func (s *Server) respondResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, archive.ErrUnsafePath):
		s.respondError(w, http.StatusForbidden, "ungültiger Pfad")
	case errors.Is(err, archive.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Datei nicht gefunden")
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

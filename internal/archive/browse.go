package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ablagehq/ablage/internal/models"
)

// maxSearchResults caps substring search output.
const maxSearchResults = 100

// Search returns archived files whose relative path contains q
// (case-insensitive), sorted by path and capped at maxSearchResults.
func (s *Service) Search(q string) []models.SearchHit {
	cfg := loadSettings(s.baseDir)
	needle := strings.ToLower(strings.TrimSpace(q))
	hits := []models.SearchHit{}
	if needle == "" {
		return hits
	}
	_ = filepath.Walk(cfg.ArchiveDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(cfg.ArchiveDir, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if strings.Contains(strings.ToLower(rel), needle) {
			hits = append(hits, models.SearchHit{
				Path: rel,
				Name: info.Name(),
				Size: info.Size(),
				Ext:  strings.TrimPrefix(strings.ToLower(filepath.Ext(info.Name())), "."),
			})
		}
		return nil
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].Path < hits[j].Path })
	if len(hits) > maxSearchResults {
		hits = hits[:maxSearchResults]
	}
	return hits
}

// Stats aggregates archive-wide counters from a directory walk plus the
// staging listing.
func (s *Service) Stats() models.Stats {
	cfg := loadSettings(s.baseDir)
	stats := models.Stats{
		Categories:     map[string]int{},
		ArchiveDir:     cfg.ArchiveDir,
		ImportDir:      cfg.ImportDir,
		PasswordActive: cfg.PasswordActive,
	}
	_ = filepath.Walk(cfg.ArchiveDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !Allowed(info.Name()) {
			return nil
		}
		stats.Total++
		stats.SizeBytes += info.Size()
		rel, relErr := filepath.Rel(cfg.ArchiveDir, p)
		if relErr != nil {
			return nil
		}
		stats.Categories[topCategory(rel)]++
		return nil
	})
	stats.SizeMB = float64(stats.SizeBytes) / (1024 * 1024)

	if names, err := listStagedNames(cfg.ImportDir); err == nil {
		stats.PendingImports = len(names)
	}
	return stats
}

// Tree groups archived files by category → "subcategory/year" → file list.
func (s *Service) Tree() []models.TreeCategory {
	cfg := loadSettings(s.baseDir)
	grouped := map[string]map[string][]models.TreeFile{}

	_ = filepath.Walk(cfg.ArchiveDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !Allowed(info.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(cfg.ArchiveDir, p)
		if relErr != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		category := "Unsortiert"
		sub := "Allgemein"
		if len(parts) > 1 {
			category = parts[0]
		}
		if len(parts) > 3 {
			sub = parts[1] + "/" + parts[2]
		} else if len(parts) == 3 {
			sub = parts[1]
		}
		if grouped[category] == nil {
			grouped[category] = map[string][]models.TreeFile{}
		}
		grouped[category][sub] = append(grouped[category][sub], models.TreeFile{
			Name: info.Name(),
			Path: filepath.ToSlash(rel),
			Size: info.Size(),
			Date: info.ModTime().Format("02.01.2006"),
			Ext:  strings.TrimPrefix(strings.ToLower(filepath.Ext(info.Name())), "."),
		})
		return nil
	})

	result := make([]models.TreeCategory, 0, len(grouped))
	for category, subs := range grouped {
		node := models.TreeCategory{Name: category}
		for sub, files := range subs {
			sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
			node.Count += len(files)
			node.Subs = append(node.Subs, models.TreeSub{Name: sub, Files: files})
		}
		sort.Slice(node.Subs, func(i, j int) bool { return node.Subs[i].Name < node.Subs[j].Name })
		result = append(result, node)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// topCategory maps a relative path to its first directory segment.
func topCategory(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 && parts[0] != "." {
		return parts[0]
	}
	return "Unsortiert"
}

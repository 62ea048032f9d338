// Package models defines the data contracts shared between the archive core,
// the HTTP surface, and the assistant kernel.
package models

import "time"

// Entry is the persisted record of one archived document. Field names follow
// the on-disk index format, which predates this implementation.
type Entry struct {
	Original    string    `json:"original"`
	Category    string    `json:"kategorie"`
	Subcategory string    `json:"sub"`
	Year        string    `json:"jahr"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"groesse"`
	ArchivedAt  time.Time `json:"archiviert"`
	Renamed     bool      `json:"umbenannt"`
}

// StagedFile describes a file waiting in the import directory.
type StagedFile struct {
	Name string `json:"name"`
	Size int64  `json:"groesse"`
	Ext  string `json:"ext"`
}

// SearchHit is one match of a substring search over archived paths.
type SearchHit struct {
	Path string `json:"pfad"`
	Name string `json:"name"`
	Size int64  `json:"groesse"`
	Ext  string `json:"ext"`
}

// Stats aggregates archive-wide counters for the dashboard.
type Stats struct {
	Total          int            `json:"gesamt"`
	SizeBytes      int64          `json:"groesse_bytes"`
	SizeMB         float64        `json:"groesse_mb"`
	Categories     map[string]int `json:"kategorien"`
	PendingImports int            `json:"import_count"`
	ArchiveDir     string         `json:"archiv_pfad"`
	ImportDir      string         `json:"import_pfad"`
	PasswordActive bool           `json:"passwort_aktiv"`
}

// TreeFile, TreeSub, and TreeCategory form the grouped archive view:
// category → "subcategory/year" → files.
type TreeFile struct {
	Name string `json:"name"`
	Path string `json:"pfad"`
	Size int64  `json:"groesse"`
	Date string `json:"datum"`
	Ext  string `json:"ext"`
}

type TreeSub struct {
	Name  string     `json:"name"`
	Files []TreeFile `json:"dateien"`
}

type TreeCategory struct {
	Name  string    `json:"name"`
	Count int       `json:"count"`
	Subs  []TreeSub `json:"subs"`
}

package models

import "fmt"

// OutcomeKind classifies what happened to one staged file during archival.
type OutcomeKind string

const (
	OutcomeArchived        OutcomeKind = "archived"
	OutcomeDuplicate       OutcomeKind = "duplicate"
	OutcomeNewVersion      OutcomeKind = "new_version"
	OutcomeSecurityWarning OutcomeKind = "security_warning"
	OutcomeFailed          OutcomeKind = "failed"
)

// Outcome is the per-file result of a batch archival run.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	Original    string      `json:"original"`
	FinalName   string      `json:"final_name,omitempty"`
	Path        string      `json:"pfad,omitempty"`
	Category    string      `json:"kategorie,omitempty"`
	Subcategory string      `json:"sub,omitempty"`
	Year        string      `json:"jahr,omitempty"`
	Renamed     bool        `json:"umbenannt,omitempty"`
	Detail      string      `json:"detail,omitempty"`
}

// Report aggregates the outcomes of one batch archival invocation.
// Batch operations always report per file instead of failing on the first
// error: the contract is partial progress plus an exact account of it.
type Report struct {
	BatchID  string    `json:"batch_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Summary renders the report in the archive's user-facing format.
func (r *Report) Summary() string {
	if len(r.Outcomes) == 0 {
		return "Import-Ordner ist leer."
	}
	out := fmt.Sprintf("%d Dokument(e) verarbeitet:\n", len(r.Outcomes))
	for _, o := range r.Outcomes {
		out += "\n" + o.Line() + "\n"
	}
	return out
}

// Line renders one outcome as a report line.
func (o *Outcome) Line() string {
	switch o.Kind {
	case OutcomeDuplicate:
		return fmt.Sprintf("Duplikat: %s – identisch mit %s", o.Original, o.Detail)
	case OutcomeSecurityWarning:
		return fmt.Sprintf("Sicherheitswarnung: %s – ungültiger Zielpfad, Datei nicht verschoben", o.Original)
	case OutcomeFailed:
		return fmt.Sprintf("Fehler: %s – %s", o.Original, o.Detail)
	case OutcomeNewVersion:
		return fmt.Sprintf("%s (neue Version) → %s / %s / %s", o.FinalName, o.Category, o.Subcategory, o.Year)
	default:
		line := fmt.Sprintf("%s → %s / %s / %s", o.FinalName, o.Category, o.Subcategory, o.Year)
		if o.Renamed && o.FinalName != o.Original {
			line += fmt.Sprintf(" (umbenannt von '%s')", o.Original)
		}
		return line
	}
}

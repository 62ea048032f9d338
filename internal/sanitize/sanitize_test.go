package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Rechnungen", "Rechnungen"},
		{"whitespace collapsed", "  Telekom  Rechnung ", "Telekom_Rechnung"},
		{"illegal chars stripped", `Steuern/..\..:2023?`, "Steuern....2023"},
		{"pipe stripped", "a|b", "ab"},
		{"all caps capitalized", "VERSICHERUNG", "Versicherung"},
		{"short caps kept", "HUK", "HUK"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_capsLength(t *testing.T) {
	got := Clean(strings.Repeat("a", 200))
	if len(got) != 80 {
		t.Errorf("len = %d, want 80", len(got))
	}
}

func TestClean_capDoesNotSplitRunes(t *testing.T) {
	got := Clean(strings.Repeat("ä", 200))
	if !utf8.ValidString(got) {
		t.Fatalf("result %q is not valid UTF-8", got)
	}
	if n := utf8.RuneCountInString(got); n != 80 {
		t.Errorf("rune count = %d, want 80", n)
	}
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ext  string
		want string
	}{
		{"appends extension", "Telekom_Rechnung_Januar_2024", ".pdf", "Telekom_Rechnung_Januar_2024.pdf"},
		{"strips duplicate extension", "Bescheid.pdf", ".pdf", "Bescheid.pdf"},
		{"case-insensitive duplicate extension", "Bescheid.PDF", ".pdf", "Bescheid.pdf"},
		{"spaces to underscores", "KFZ Police 2023", ".jpg", "KFZ_Police_2023.jpg"},
		{"trims punctuation", "._Report_-", ".txt", "Report.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFilename(tt.in, tt.ext); got != tt.want {
				t.Errorf("CleanFilename(%q, %q) = %q, want %q", tt.in, tt.ext, got, tt.want)
			}
		})
	}
}

func TestCleanFilename_placeholderFallsBack(t *testing.T) {
	for _, in := range []string{"DATEINAME", "neuer_dateiname", "filename", "Dokument", "ab", ""} {
		got := CleanFilename(in, ".pdf")
		if !strings.HasPrefix(got, "Dokument_") || !strings.HasSuffix(got, ".pdf") {
			t.Errorf("CleanFilename(%q) = %q, want timestamp fallback ending in .pdf", in, got)
		}
		// Fallback must be more than the bare placeholder word.
		if got == "Dokument.pdf" {
			t.Errorf("CleanFilename(%q) produced bare placeholder", in)
		}
	}
}

func TestStripVersionTag(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Report_v2", "Report"},
		{"Report_v13", "Report"},
		{"Report", "Report"},
		{"Report_version", "Report_version"},
	}
	for _, tt := range tests {
		if got := StripVersionTag(tt.in); got != tt.want {
			t.Errorf("StripVersionTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsCryptic(t *testing.T) {
	cryptic := []string{
		"IMG_00123.jpg",
		"scan001.jpg",
		"DSC.png", // shorter than 5
		"a1b2c3d4e5f6.pdf",
		"20240101123055.pdf",
		"1706112000.txt",
		"550e8400-e29b-41d4-a716-446655440000.docx",
		"12-34_56.tif",
		"unnamed.docx",
	}
	for _, name := range cryptic {
		if !IsCryptic(name) {
			t.Errorf("IsCryptic(%q) = false, want true", name)
		}
	}
	meaningful := []string{
		"Telekom_Rechnung_Januar_2024.pdf",
		"Mietvertrag_Hauptstrasse.docx",
		"Steuerbescheid2023.pdf",
	}
	for _, name := range meaningful {
		if IsCryptic(name) {
			t.Errorf("IsCryptic(%q) = true, want false", name)
		}
	}
}

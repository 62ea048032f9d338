package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

var testNow = time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

func newTestCategorizer(c Classifier) *Categorizer {
	cat := NewCategorizer(c, zap.NewNop())
	cat.now = func() time.Time { return testNow }
	return cat
}

func fixedResponse(s string) Classifier {
	return ClassifierFunc(func(context.Context, string) (string, error) { return s, nil })
}

func TestCategorize_wellFormedResponse(t *testing.T) {
	cat := newTestCategorizer(fixedResponse(
		"ERGEBNIS: Rechnungen|Telekom|2024|Telekom_Rechnung_Januar_2024.jpg"))
	got := cat.Categorize(context.Background(), "scan001.jpg", "Telekom Rechnung Januar 2024")
	if got.Category != "Rechnungen" || got.Subcategory != "Telekom" || got.Year != "2024" {
		t.Errorf("got %+v", got)
	}
	if got.Filename != "Telekom_Rechnung_Januar_2024.jpg" {
		t.Errorf("filename = %q", got.Filename)
	}
	if !got.Renamed {
		t.Error("cryptic original must be flagged as renamed")
	}
}

func TestCategorize_reasoningBeforeRecord(t *testing.T) {
	response := strings.Join([]string{
		"Das Dokument ist offenbar ein Steuerbescheid.",
		"Ich ordne es wie folgt ein:",
		"",
		"**ERGEBNIS: Steuern|Finanzamt|2023|Einkommensteuerbescheid_2023.pdf**",
	}, "\n")
	cat := newTestCategorizer(fixedResponse(response))
	got := cat.Categorize(context.Background(), "bescheid_2023.pdf", "Finanzamt ...")
	if got.Category != "Steuern" || got.Subcategory != "Finanzamt" || got.Year != "2023" {
		t.Errorf("got %+v", got)
	}
}

func TestCategorize_markdownFencedRecord(t *testing.T) {
	cat := newTestCategorizer(fixedResponse("```\nVerträge|Vermieter|2022|Mietvertrag_Hauptstrasse.pdf\n```"))
	got := cat.Categorize(context.Background(), "IMG_551122.pdf", "")
	if got.Category != "Verträge" || got.Filename != "Mietvertrag_Hauptstrasse.pdf" {
		t.Errorf("got %+v", got)
	}
}

func TestCategorize_invalidYearSubstituted(t *testing.T) {
	cat := newTestCategorizer(fixedResponse("Rechnungen|Telekom|irgendwann|Telekom_Rechnung.pdf"))
	got := cat.Categorize(context.Background(), "rechnung_telekom.pdf", "")
	if got.Year != "2026" {
		t.Errorf("year = %q, want current year", got.Year)
	}
}

func TestCategorize_yearWithSurroundingText(t *testing.T) {
	cat := newTestCategorizer(fixedResponse("Rechnungen|Telekom|Jahr: 2024|Telekom_Rechnung.pdf"))
	got := cat.Categorize(context.Background(), "rechnung_telekom.pdf", "")
	if got.Year != "2024" {
		t.Errorf("year = %q, want 2024", got.Year)
	}
}

func TestCategorize_classifierErrorFallsBack(t *testing.T) {
	failing := ClassifierFunc(func(context.Context, string) (string, error) {
		return "", errors.New("timeout")
	})
	cat := newTestCategorizer(failing)
	got := cat.Categorize(context.Background(), "Steuerunterlagen_Mueller.pdf", "text")
	if got.Category != FallbackCategory || got.Subcategory != FallbackSubcategory {
		t.Errorf("got %+v", got)
	}
	if !strings.HasSuffix(got.Filename, ".pdf") {
		t.Errorf("fallback filename %q lost extension", got.Filename)
	}
	if !strings.Contains(got.Filename, "Steuerunterlagen_Mueller") {
		t.Errorf("fallback filename %q should keep meaningful stem", got.Filename)
	}
}

func TestCategorize_nilClassifierFallsBack(t *testing.T) {
	cat := newTestCategorizer(nil)
	got := cat.Categorize(context.Background(), "Rechnung.pdf", "text")
	if got.Category != FallbackCategory || got.Subcategory != FallbackSubcategory {
		t.Errorf("got %+v", got)
	}
	if !strings.HasSuffix(got.Filename, ".pdf") {
		t.Errorf("fallback filename %q lost extension", got.Filename)
	}
}

func TestCategorize_unparseableResponseCrypticName(t *testing.T) {
	cat := newTestCategorizer(fixedResponse("Ich kann das leider nicht kategorisieren."))
	got := cat.Categorize(context.Background(), "IMG_00123.jpg", "")
	if got.Category != "Unsortiert" || got.Subcategory != "Allgemein" {
		t.Errorf("got %+v", got)
	}
	if !strings.HasPrefix(got.Filename, "Unbekanntes_Dokument_") || !strings.HasSuffix(got.Filename, ".jpg") {
		t.Errorf("filename = %q", got.Filename)
	}
	if got.Year != "2026" {
		t.Errorf("year = %q", got.Year)
	}
}

func TestCategorize_placeholderFilenameReplaced(t *testing.T) {
	cat := newTestCategorizer(fixedResponse("Rechnungen|Strom|2024|DATEINAME.pdf"))
	got := cat.Categorize(context.Background(), "stadtwerke_abrechnung.pdf", "Stromabrechnung")
	if strings.Contains(strings.ToLower(got.Filename), "dateiname") {
		t.Errorf("placeholder survived: %q", got.Filename)
	}
	if !strings.HasSuffix(got.Filename, ".pdf") {
		t.Errorf("filename = %q", got.Filename)
	}
}

func TestCategorize_traversalAttemptSanitized(t *testing.T) {
	cat := newTestCategorizer(fixedResponse(`../../etc|..\..|2024|passwd.pdf`))
	got := cat.Categorize(context.Background(), "harmlos_aussehend.pdf", "")
	if strings.ContainsAny(got.Category, `/\`) || strings.ContainsAny(got.Subcategory, `/\`) {
		t.Errorf("separators survived sanitization: %+v", got)
	}
}

func TestParseRecord_lastQualifyingLineWins(t *testing.T) {
	raw := "Rechnungen|Alt|2020|Alt.pdf\nKorrektur:\nRechnungen|Neu|2024|Neu.pdf"
	got, ok := parseRecord(raw)
	if !ok {
		t.Fatal("parseRecord failed")
	}
	if got[1] != "Neu" {
		t.Errorf("subcategory = %q, want the record closest to the end", got[1])
	}
}

func TestParseRecord_underscoresSurviveMarkdownStrip(t *testing.T) {
	got, ok := parseRecord("**ERGEBNIS: Arbeit|Berichte|2024|Bericht_v2.txt**")
	if !ok {
		t.Fatal("parseRecord failed")
	}
	if got[3] != "Bericht_v2.txt" {
		t.Errorf("filename = %q, underscores are content and must survive", got[3])
	}
}

func TestParseRecord_emptyFieldRejected(t *testing.T) {
	if _, ok := parseRecord("Rechnungen||2024|x.pdf"); ok {
		t.Error("record with empty field must not parse")
	}
}

func TestFallback_crypticVsMeaningful(t *testing.T) {
	cryptic := Fallback("IMG_00123.jpg", true, testNow)
	if cryptic.Filename != "Unbekanntes_Dokument_20260829_103000.jpg" {
		t.Errorf("cryptic fallback = %q", cryptic.Filename)
	}
	meaningful := Fallback("Jahresabrechnung_Stadtwerke.pdf", false, testNow)
	if !strings.HasPrefix(meaningful.Filename, "20260829_103000_Jahresabrechnung") {
		t.Errorf("meaningful fallback = %q", meaningful.Filename)
	}
}

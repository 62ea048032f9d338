package classify

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ablagehq/ablage/internal/extract"
)

// maxPromptTextLen bounds how much extracted document text goes into the
// prompt; the classifier does not need the full excerpt to categorize.
const maxPromptTextLen = 2000

// BuildPrompt renders the categorization prompt. The prompt deliberately
// contains no bracketed placeholder tokens a model could echo back verbatim;
// the expected answer shape is shown only through concrete examples.
func BuildPrompt(filename, text string, cryptic bool, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	year := now.Format("2006")

	excerpt := extract.Truncate(text, maxPromptTextLen)
	if excerpt == "" {
		excerpt = fmt.Sprintf("[Kein Text extrahierbar. Datei: %s]", filename)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Analysiere dieses Dokument und kategorisiere es.

Originaldateiname: %s
Dokumenteninhalt:
---
%s
---

Antworte in GENAU diesem Format (4 Teile, getrennt durch |):
ERGEBNIS: Hauptkategorie|Unterkategorie|Jahreszahl|Beschreibender_Dateiname%s

Beispiele wie eine korrekte Antwort aussieht:
ERGEBNIS: Rechnungen|Telekom|2024|Telekom_Rechnung_Januar_2024%s
ERGEBNIS: Versicherung|HUK-Coburg|2023|KFZ_Versicherungspolice_2023%s
ERGEBNIS: Steuern|Finanzamt|%s|Einkommensteuerbescheid_%s%s
ERGEBNIS: Medizin|Zahnarzt|2024|Zahnarztrechnung_Praxis_Mueller%s

Regeln:
- Hauptkategorie: Rechnungen / Verträge / Versicherung / Steuern / Behörden / Medizin / Privat / Finanzen / Arbeit / Immobilien / Fahrzeuge / Bildung
- Unterkategorie: Konkreter Absender oder Thema (Firmenname, Arzt, Behörde etc.)
- Jahreszahl: 4-stellig aus dem Dokument, oder %s wenn nicht erkennbar
- Dateiname: Aussagekräftiger Name ohne Leerzeichen, mit Datum/Firma/Typ wenn erkennbar
`, filename, excerpt, ext, ext, ext, year, year, ext, ext, year)

	if cryptic {
		b.WriteString("WICHTIG: Der Originaldateiname ist nichtssagend – erstelle UNBEDINGT einen neuen aussagekräftigen Namen aus dem Inhalt!\n")
	}
	b.WriteString("\nDie ERGEBNIS-Zeile muss die letzte Zeile deiner Antwort sein.")
	return b.String()
}

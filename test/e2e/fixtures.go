// Package e2e exercises the full stack over HTTP: upload, sort, browse,
// download, move, delete, and chat against a real server on a temp archive.
package e2e

import (
	"context"
	"strings"

	"github.com/ablagehq/ablage/internal/classify"
	"github.com/ablagehq/ablage/internal/providers"
)

// fixtureDoc is one staged document with the classification the model is
// scripted to return and the archive path that must result from it.
type fixtureDoc struct {
	Name     string
	Content  string
	Marker   string
	Response string
	Archived string
}

// BuildCorpus returns a small realistic batch of German household documents.
func BuildCorpus() []fixtureDoc {
	return []fixtureDoc{
		{
			Name:     "rechnung telekom märz.txt",
			Content:  "Telekom Deutschland GmbH\nRechnung für März 2024\nBetrag: 39,95 EUR",
			Marker:   "Telekom Deutschland",
			Response: "Rechnungen|Telekom|2024|Telekom_Rechnung_Maerz.txt",
			Archived: "Rechnungen/Telekom/2024/Telekom_Rechnung_Maerz.txt",
		},
		{
			Name:     "mietvertrag.txt",
			Content:  "Mietvertrag über die Wohnung Hauptstraße 12, beginnend am 01.02.2023.",
			Marker:   "Mietvertrag",
			Response: "Vertraege|Miete|2023|Mietvertrag_Hauptstrasse_12.txt",
			Archived: "Vertraege/Miete/2023/Mietvertrag_Hauptstrasse_12.txt",
		},
		{
			Name:     "lohnabrechnung_01.txt",
			Content:  "Lohnabrechnung Januar 2024\nBrutto: 4.200,00 EUR",
			Marker:   "Lohnabrechnung",
			Response: "Arbeit|Gehalt|2024|Lohnabrechnung_Januar.txt",
			Archived: "Arbeit/Gehalt/2024/Lohnabrechnung_Januar.txt",
		},
	}
}

// scriptedClassifier answers with the response of whichever fixture's content
// marker appears in the prompt. Documents without a marker match get an
// unparseable answer so the fallback path is part of the run.
func scriptedClassifier(docs []fixtureDoc) classify.Classifier {
	return classify.ClassifierFunc(func(_ context.Context, prompt string) (string, error) {
		for _, d := range docs {
			if strings.Contains(prompt, d.Marker) {
				return d.Response, nil
			}
		}
		return "dazu kann ich nichts sagen", nil
	})
}

// chatProvider is a scripted AI backend for the chat endpoint.
type chatProvider struct {
	reply string
}

func (p *chatProvider) Name() string { return "Scripted" }

func (p *chatProvider) Chat(context.Context, string, []providers.Message) (string, error) {
	return p.reply, nil
}

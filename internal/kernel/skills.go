package kernel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ablagehq/ablage/internal/archive"
	"github.com/ablagehq/ablage/pkg/utils"
)

// RegisterArchiveSkills installs the document-archive skills on the
// registry, all backed by the given service.
func RegisterArchiveSkills(reg *Registry, svc *archive.Service) {
	reg.Register(Skill{
		Name:        "dms_import_scan",
		Description: "Listet die Dokumente im Import-Ordner auf",
		Run: func(ctx context.Context, args map[string]string) (string, error) {
			files, err := svc.ListStaged()
			if err != nil {
				return "", err
			}
			if len(files) == 0 {
				return "📂 Import-Ordner ist leer.", nil
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "📥 %d Dokument(e) im Import-Ordner:\n", len(files))
			for _, f := range files {
				fmt.Fprintf(&sb, "  • %s\n", f.Name)
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	})

	reg.Register(Skill{
		Name:        "dms_einsortieren",
		Description: "Sortiert alle Dokumente aus dem Import-Ordner ins Archiv ein",
		Run: func(ctx context.Context, args map[string]string) (string, error) {
			report, err := svc.Sort(ctx)
			if err != nil {
				return "", err
			}
			return report.Summary(), nil
		},
	})

	reg.Register(Skill{
		Name:        "dms_suchen",
		Description: "Sucht Dokumente im Archiv nach Namen",
		Params:      []string{"suchbegriff"},
		Run: func(ctx context.Context, args map[string]string) (string, error) {
			q := args["suchbegriff"]
			if strings.TrimSpace(q) == "" {
				return "❌ Bitte einen Suchbegriff angeben.", nil
			}
			hits := svc.Search(q)
			if len(hits) == 0 {
				return fmt.Sprintf("🔍 Keine Treffer für '%s'.", q), nil
			}
			var sb strings.Builder
			fmt.Fprintf(&sb, "🔍 %d Treffer für '%s':\n", len(hits), q)
			for _, h := range hits {
				fmt.Fprintf(&sb, "  • %s (%s)\n", h.Path, utils.FormatBytes(h.Size))
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	})

	reg.Register(Skill{
		Name:        "dms_archiv_uebersicht",
		Description: "Zeigt die Archiv-Struktur nach Kategorien",
		Run: func(ctx context.Context, args map[string]string) (string, error) {
			tree := svc.Tree()
			if len(tree) == 0 {
				return "📁 Archiv ist leer.", nil
			}
			var sb strings.Builder
			sb.WriteString("📁 Archiv-Übersicht:\n")
			for _, cat := range tree {
				fmt.Fprintf(&sb, "  %s (%d)\n", cat.Name, cat.Count)
				for _, sub := range cat.Subs {
					fmt.Fprintf(&sb, "    %s: %d Datei(en)\n", sub.Name, len(sub.Files))
				}
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	})

	reg.Register(Skill{
		Name:        "dms_stats",
		Description: "Zeigt Statistiken über das Archiv",
		Run: func(ctx context.Context, args map[string]string) (string, error) {
			st := svc.Stats()
			cats := make([]string, 0, len(st.Categories))
			for name := range st.Categories {
				cats = append(cats, name)
			}
			sort.Strings(cats)

			var sb strings.Builder
			sb.WriteString("📊 Archiv-Statistik:\n")
			fmt.Fprintf(&sb, "  Dokumente:  %d\n", st.Total)
			fmt.Fprintf(&sb, "  Größe:      %s\n", utils.FormatBytes(st.SizeBytes))
			fmt.Fprintf(&sb, "  Im Import:  %d\n", st.PendingImports)
			for _, name := range cats {
				fmt.Fprintf(&sb, "  • %s: %d\n", name, st.Categories[name])
			}
			return strings.TrimRight(sb.String(), "\n"), nil
		},
	})

	reg.Register(Skill{
		Name:        "dms_loeschen",
		Description: "Löscht ein Dokument aus dem Archiv (relativer Pfad, optional Passwort)",
		Params:      []string{"pfad_relativ", "passwort"},
		Run: func(ctx context.Context, args map[string]string) (string, error) {
			rel := args["pfad_relativ"]
			if strings.TrimSpace(rel) == "" {
				return "❌ Bitte einen Pfad angeben.", nil
			}
			msg, err := svc.Delete(rel, args["passwort"])
			if err != nil {
				return "", err
			}
			return msg, nil
		},
	})
}

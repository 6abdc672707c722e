package screens

import (
	"context"
	"fmt"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/screen"
)

const logPageSize = 14

// historyLog pages through the system history, newest first.
func historyLog(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:       "dsplog",
		Title:    "Display History Log",
		Parent:   "mainmenu",
		PageSize: logPageSize,

		Count: func(_ context.Context, _ *screen.Ctx) (int, error) {
			return len(d.History.Entries()), nil
		},

		Render: func(_ context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			entries := d.History.Entries()
			page := sc.Paginate(len(entries))
			lo, hi := page.Bounds()

			f := begin(sc, cat)
			f.Plain(" Time      Sev    Source      Message")
			f.Plain("")
			for _, e := range entries[lo:hi] {
				var class string
				switch e.Severity {
				case "ERROR":
					class = "field-error"
				case "WARN":
					class = "field-warn"
				}
				f.Segments(field.TextSpan{
					Text: " " + e.Time.Format("15:04:05") + "  " +
						field.PadTo(e.Severity, 7) +
						field.PadTo(e.Source, 12) +
						e.Message,
					Class: class,
				})
			}
			if len(entries) == 0 {
				f.Plain("   (No log entries to display)")
			} else {
				f.Plain("")
				f.Plain(fmt.Sprintf("   %d entries", len(entries)))
			}
			return finish(sc, cat, f, page), nil
		},
	}
}

package screens

import (
	"time"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
)

// Row layout shared by every screen: content fills the top, then the roll
// indicator, the function-key legend, and the message line on the last row.
const (
	contentRows  = 20
	indicatorRow = 21
	keysRow      = 22
)

// begin starts a frame with the standard title banner.
func begin(sc *screen.Ctx, cat *catalog.Catalog) *screen.Frame {
	meta := cat.ScreenMeta(sc.Def.ID)
	title := meta.Title
	if title == "" {
		title = sc.Def.Title
	}

	f := screen.NewFrame(sc.Def.ID)
	f.Segments(field.TextSpan{Text: field.Centered(title, f.Columns), Class: "field-title"})
	f.Plain("")
	return f
}

// finish pads the frame out to the full grid and appends the roll
// indicator, key legend and pending message. page may be the zero value
// for screens that do not roll.
func finish(sc *screen.Ctx, cat *catalog.Catalog, f *screen.Frame, page pagination.Page) *screen.Frame {
	f.PadTo(indicatorRow)
	f.Rows = f.Rows[:indicatorRow]

	if page.Size > 0 {
		f.Segments(rollIndicator(page)...)
	} else {
		f.Plain("")
	}

	if keys := cat.ScreenMeta(sc.Def.ID).Keys; keys != "" {
		f.Segments(field.TextSpan{Text: " " + keys, Class: "field-keys"})
	} else {
		f.Plain("")
	}

	if m, ok := sc.TakeMessage(); ok {
		f.Message(m.Text, m.Level)
	} else {
		f.Plain("")
	}
	return f
}

// rollIndicator builds the right-aligned More.../Bottom row. More is a
// hotspot so a click pages without the keyboard.
func rollIndicator(page pagination.Page) []field.Span {
	spans := make([]field.Span, 0, 3)
	if page.HasPrevious {
		spans = append(spans, field.HotspotSpan{Action: "page-up", Text: " More^ ", Class: "field-hotspot"})
	}
	filler := screen.Columns80 - len("  Bottom") - len(" More^ ")*len(spans)
	spans = append(spans, field.TextSpan{Text: field.PadTo("", filler)})
	if page.HasMore {
		spans = append(spans, field.HotspotSpan{Action: "page-down", Text: "More...", Class: "field-hotspot"})
	} else {
		spans = append(spans, field.TextSpan{Text: " Bottom"})
	}
	return spans
}

// systemRow renders the right-aligned system/display identification block
// used by the sign-on screen.
func systemRow(label, value string) string {
	return field.PadTo("", 40) + field.PadTo(label+":", 13) + value
}

// stamp is the banner timestamp, one per render.
func stamp(now time.Time) string {
	return now.Format("01/02/06  15:04:05")
}

// requireSignOn guards submit handlers on authenticated screens. A session
// that lost its identity is sent back to sign-on instead of faulting.
func requireSignOn(sc *screen.Ctx) (screen.Directive, bool) {
	if sc.Session.Identity.Authenticated {
		return screen.Directive{}, false
	}
	d := screen.Goto(Entry)
	d.Text = "Not signed on"
	d.Level = "error"
	return d, true
}

package screen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/session"
)

// FieldMap carries posted field values into a submit handler. Handlers must
// never assume key completeness; Get defaults absent keys to the empty
// string so a missing field can never fault a turn.
type FieldMap map[string]string

// Get returns the trimmed value for a field, or "" when absent.
func (m FieldMap) Get(key string) string {
	return strings.TrimSpace(m[key])
}

// Upper returns the trimmed, uppercased value for a field.
func (m FieldMap) Upper(key string) string {
	return strings.ToUpper(m.Get(key))
}

// FirstOption scans option columns named prefix0..prefixN-1 in ascending
// displayed order and returns the first row with a non-blank option code.
// One navigational action per Enter: callers act on the first hit only.
func (m FieldMap) FirstOption(prefix string, rows int) (row int, code string, ok bool) {
	for i := 0; i < rows; i++ {
		if v := m.Get(fmt.Sprintf("%s%d", prefix, i)); v != "" {
			return i, v, true
		}
	}
	return 0, "", false
}

// DirectiveKind discriminates handler outcomes.
type DirectiveKind int

const (
	// DirectiveRender moves to (or re-renders) a target screen.
	DirectiveRender DirectiveKind = iota
	// DirectiveStay re-renders the current screen, optionally with a message.
	DirectiveStay
	// DirectiveEnd terminates the session.
	DirectiveEnd
)

// Directive is what a submit or function-key handler wants to happen next.
type Directive struct {
	Kind   DirectiveKind
	Target string
	Text   string
	Level  string
}

// Goto renders the named screen.
func Goto(screenID string) Directive {
	return Directive{Kind: DirectiveRender, Target: screenID}
}

// Stay re-renders the current screen unchanged.
func Stay() Directive {
	return Directive{Kind: DirectiveStay}
}

// StayWithMessage re-renders the current screen with a one-shot message.
func StayWithMessage(text, level string) Directive {
	return Directive{Kind: DirectiveStay, Text: text, Level: level}
}

// End signs the session off.
func End() Directive {
	return Directive{Kind: DirectiveEnd}
}

// Ctx is the capability set the engine exposes to business screens: the
// current session, the scratch store, and pagination scoped to the screen's
// registered page size.
type Ctx struct {
	Session *session.Session
	Def     *Definition
}

// Scratch reads from the session scratch store.
func (c *Ctx) Scratch(key string) string { return c.Session.Scratch(key) }

// SetScratch writes to the session scratch store.
func (c *Ctx) SetScratch(key, value string) { c.Session.SetScratch(key, value) }

// Paginate returns the visible window for this screen given a total item
// count, using the session's stored offset clamped to the list end.
func (c *Ctx) Paginate(total int) pagination.Page {
	return pagination.Window(c.Session.Offset(c.Def.ID), c.Def.PageSize, total)
}

// TakeMessage drains the session's pending one-shot message so the
// renderer can place it on the message line.
func (c *Ctx) TakeMessage() (session.Message, bool) {
	return c.Session.TakeMessage()
}

// RenderFunc produces a frame from session state.
type RenderFunc func(ctx context.Context, sc *Ctx) (*Frame, error)

// SubmitFunc consumes posted field values and says what happens next.
type SubmitFunc func(ctx context.Context, sc *Ctx, fields FieldMap) (Directive, error)

// KeyFunc handles one screen-specific function key.
type KeyFunc func(ctx context.Context, sc *Ctx, fields FieldMap) (Directive, error)

// CountFunc returns the total item count behind a list screen. Screens
// that set it become rollable; the engine uses it to clamp offsets.
type CountFunc func(ctx context.Context, sc *Ctx) (int, error)

// Definition is one registered screen: its identity, navigation metadata
// and handler set. Definitions are read-only at runtime.
type Definition struct {
	ID           string
	Title        string
	Parent       string
	PageSize     int
	DefaultField int
	Render       RenderFunc
	Submit       SubmitFunc
	Count        CountFunc
	Keys         map[string]KeyFunc
}

// Validate checks the definition is registrable.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("screen id is required")
	}
	if d.Render == nil {
		return fmt.Errorf("screen %s: render is required", d.ID)
	}
	return nil
}

// KeyNames returns the screen-specific key overrides in sorted order.
// Used for the function-key legend and for diagnostics.
func (d *Definition) KeyNames() []string {
	names := make([]string, 0, len(d.Keys))
	for k := range d.Keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

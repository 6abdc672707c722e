package engine

import (
	"context"

	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

// Built-in function keys. Screen-specific overrides in Definition.Keys are
// looked up first; these defaults apply everywhere else.
const (
	KeyRefresh  = "F5"
	KeyCancel   = "F12"
	KeyExit     = "F3"
	KeyRollUp   = "PageUp"
	KeyRollDown = "PageDown"
)

// route resolves (screen, key) to a directive. Precedence: screen-specific
// override, then the built-in table, then the "key not valid" message.
func (e *Engine) route(ctx context.Context, s *session.Session, def *screen.Definition, key string, fields screen.FieldMap) (screen.Directive, error) {
	if fn, ok := def.Keys[key]; ok {
		return e.invokeSubmit(ctx, s, def, screen.SubmitFunc(fn), fields)
	}

	switch key {
	case KeyRefresh:
		// Re-render, recomputing all underlying lists. No state change.
		return screen.Stay(), nil

	case KeyCancel:
		return e.cancel(s, def), nil

	case KeyExit:
		if def.ID == e.entry {
			return screen.End(), nil
		}
		return e.cancel(s, def), nil

	case KeyRollDown:
		return e.roll(ctx, s, def, pagination.Forward), nil

	case KeyRollUp:
		return e.roll(ctx, s, def, pagination.Backward), nil
	}

	return screen.StayWithMessage("Key "+key+" not valid for this screen", session.LevelInfo), nil
}

// cancel goes to the screen's declared parent; a screen without a parent
// treats cancel as exit.
func (e *Engine) cancel(s *session.Session, def *screen.Definition) screen.Directive {
	if def.Parent != "" {
		// Leaving a screen abandons any wizard state scoped to it.
		s.ClearScratch(def.ID + ".")
		return screen.Goto(def.Parent)
	}
	if def.ID == e.entry {
		return screen.Stay()
	}
	return screen.End()
}

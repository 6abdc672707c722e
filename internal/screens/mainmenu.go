package screens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

// mainMenu is the post-sign-on hub: numbered options from the catalog plus
// a command line that accepts abbreviated commands.
func mainMenu(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:    "mainmenu",
		Title: cat.SystemName + " Main Menu",

		Render: func(_ context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			f := begin(sc, cat)
			f.Plain(" Select one of the following:")
			f.Plain("")
			for _, opt := range cat.Menu {
				f.Plain(fmt.Sprintf("      %d. %s", opt.Number, opt.Text))
			}
			f.Plain("     90. Sign off")
			f.PadTo(17)
			f.Plain(" Selection or command")
			f.Segments(
				field.TextSpan{Text: " ===> "},
				field.InputSpan{ID: "cmd", Width: 72, MaxLength: 132},
			)
			f.Field(field.Field{ID: "cmd", Row: 18, Col: 7, Length: 132, Kind: field.KindInput})
			return finish(sc, cat, f, pagination.Page{}), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			if out, blocked := requireSignOn(sc); blocked {
				return out, nil
			}

			cmd := strings.TrimSpace(fields.Get("cmd"))
			if cmd == "" {
				return screen.Stay(), nil
			}

			if n, err := strconv.Atoi(cmd); err == nil {
				if n == 90 {
					return signOff(sc, d), nil
				}
				if target, ok := cat.OptionScreen(n); ok {
					return screen.Goto(target), nil
				}
				return screen.StayWithMessage(fmt.Sprintf("Option %d not valid", n), session.LevelError), nil
			}

			words := strings.Fields(cmd)
			if strings.EqualFold(words[0], "SIGNOFF") {
				return signOff(sc, d), nil
			}

			// GO names a menu directly: bare GO (or GO MAIN) re-renders
			// this menu, GO <display> jumps to a known display.
			if strings.EqualFold(words[0], "GO") {
				if len(words) == 1 || strings.EqualFold(words[1], "MAIN") {
					return screen.Goto("mainmenu"), nil
				}
				id := strings.ToLower(words[1])
				if _, ok := cat.Screens[id]; ok {
					return screen.Goto(id), nil
				}
				return screen.StayWithMessage(fmt.Sprintf("Menu %s not found", strings.ToUpper(words[1])), session.LevelError), nil
			}

			target, err := cat.MatchCommand(cmd)
			switch {
			case err == nil:
				return screen.Goto(target), nil
			case errors.Is(err, catalog.ErrAmbiguousCommand):
				return screen.StayWithMessage(capitalizeError(err), session.LevelError), nil
			default:
				return screen.StayWithMessage(fmt.Sprintf("CPD0030 - Command %s not found", strings.ToUpper(words[0])), session.LevelError), nil
			}
		},
	}
}

// signOff rolls the session identity back to anonymous and returns to the
// sign-on screen. The connection stays up.
func signOff(sc *screen.Ctx, d Deps) screen.Directive {
	d.History.Record("INFO", "QINTER", fmt.Sprintf("Job %s/%s signed off", sc.Session.JobName, sc.Session.Identity.User))
	sc.Session.Identity = session.Anonymous()
	sc.Session.ClearScratch("")

	return screen.Directive{
		Kind:   screen.DirectiveRender,
		Target: Entry,
		Text:   "Sign-off completed",
		Level:  session.LevelInfo,
	}
}

// capitalizeError upper-cases the first letter of an error for display on
// the message line.
func capitalizeError(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
	"github.com/dk400/dk400/internal/users"
)

// Scratch keys for the create-profile wizard. The common prefix lets a
// cancel discard the whole flow in one sweep.
const (
	crtPrefix  = "crtusrprf."
	crtStepKey = crtPrefix + "step"
	crtNameKey = crtPrefix + "name"
	crtPassKey = crtPrefix + "password"
)

// createUserProfile is a two-step wizard: name and password first, then
// class and description. Partial state lives in session scratch until the
// final Enter commits it to the identity collaborator.
func createUserProfile(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:     "crtusrprf",
		Title:  "Create User Profile",
		Parent: "wrkusrprf",

		Render: func(_ context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			f := begin(sc, cat)
			if sc.Scratch(crtStepKey) != "2" {
				f.Plain(" Type choices, press Enter.")
				f.Plain("")
				f.Segments(
					field.TextSpan{Text: "   User profile . . . . . . . . . . :  "},
					field.InputSpan{ID: "name", Width: 10, MaxLength: 10, Value: sc.Scratch(crtNameKey)},
				)
				f.Segments(
					field.TextSpan{Text: "   Password . . . . . . . . . . . . :  "},
					field.InputSpan{ID: "password", Width: 10, MaxLength: 10, Password: true},
				)
				f.Field(field.Field{ID: "name", Row: 4, Col: 40, Length: 10, Kind: field.KindInput, Value: sc.Scratch(crtNameKey)})
				f.Field(field.Field{ID: "password", Row: 5, Col: 40, Length: 10, Kind: field.KindPassword})
			} else {
				f.Plain(" User profile: " + sc.Scratch(crtNameKey))
				f.Plain("")
				f.Plain(" Type choices, press Enter.")
				f.Plain("")
				f.Segments(
					field.TextSpan{Text: "   User class . . . . . . . . . . . :  "},
					field.InputSpan{ID: "class", Width: 10, MaxLength: 10, Value: "*USER"},
				)
				f.Segments(
					field.TextSpan{Text: "   Description  . . . . . . . . . . :  "},
					field.InputSpan{ID: "description", Width: 40, MaxLength: 50},
				)
				f.Field(field.Field{ID: "class", Row: 6, Col: 40, Length: 10, Kind: field.KindInput, Value: "*USER"})
				f.Field(field.Field{ID: "description", Row: 7, Col: 40, Length: 50, Kind: field.KindInput})
			}
			return finish(sc, cat, f, pagination.Page{}), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			if out, blocked := requireSignOn(sc); blocked {
				return out, nil
			}

			if sc.Scratch(crtStepKey) != "2" {
				name := fields.Upper("name")
				password := fields.Get("password")
				switch {
				case name == "":
					return screen.StayWithMessage("User profile name is required", session.LevelError), nil
				case len(password) < minPasswordLen:
					return screen.StayWithMessage("CPF2247 - Password must be at least 4 characters", session.LevelError), nil
				}
				sc.SetScratch(crtNameKey, name)
				sc.SetScratch(crtPassKey, password)
				sc.SetScratch(crtStepKey, "2")
				return screen.Stay(), nil
			}

			class := fields.Upper("class")
			if class == "" {
				class = users.ClassUser
			}
			if !strings.HasPrefix(class, "*") {
				class = "*" + class
			}

			name := sc.Scratch(crtNameKey)
			if err := d.Users.Create(ctx, name, sc.Scratch(crtPassKey), class, fields.Get("description")); err != nil {
				return screen.Directive{}, err
			}
			sc.Session.ClearScratch(crtPrefix)
			d.History.Record("INFO", "QSECOFR", fmt.Sprintf("User profile %s created by %s", name, sc.Session.Identity.User))

			return screen.Directive{
				Kind:   screen.DirectiveRender,
				Target: "wrkusrprf",
				Text:   fmt.Sprintf("User profile %s created", name),
				Level:  session.LevelInfo,
			}, nil
		},
	}
}

package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/collab"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

// signOn is the entry screen. Credentials go to the identity collaborator;
// a profile with an expired password is routed through the change-password
// screen before reaching the main menu.
func signOn(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:    "signon",
		Title: "Sign On",

		Render: func(_ context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			f := begin(sc, cat)
			f.Plain(systemRow("System", cat.SystemName))
			f.Plain(systemRow("Subsystem", "QINTER"))
			f.Plain(systemRow("Display", sc.Session.JobName))
			f.Plain("")
			f.Segments(
				field.TextSpan{Text: "   User  . . . . . . . . . . . . . . :  "},
				field.InputSpan{ID: "user", Width: 10, MaxLength: 10, Value: sc.Scratch("signon.user")},
			)
			f.Segments(
				field.TextSpan{Text: "   Password  . . . . . . . . . . . . :  "},
				field.InputSpan{ID: "password", Width: 10, MaxLength: 10, Password: true},
			)
			f.Segments(
				field.TextSpan{Text: "   Program/procedure . . . . . . . . :  "},
				field.InputSpan{ID: "program", Width: 10, MaxLength: 10},
			)
			f.Segments(
				field.TextSpan{Text: "   Menu  . . . . . . . . . . . . . . :  "},
				field.InputSpan{ID: "menu", Width: 10, MaxLength: 10},
			)
			f.Segments(
				field.TextSpan{Text: "   Current library . . . . . . . . . :  "},
				field.InputSpan{ID: "library", Width: 10, MaxLength: 10},
			)
			f.Field(field.Field{ID: "user", Row: 6, Col: 41, Length: 10, Kind: field.KindInput, Value: sc.Scratch("signon.user")})
			f.Field(field.Field{ID: "password", Row: 7, Col: 41, Length: 10, Kind: field.KindPassword})
			f.Field(field.Field{ID: "program", Row: 8, Col: 41, Length: 10, Kind: field.KindInput})
			f.Field(field.Field{ID: "menu", Row: 9, Col: 41, Length: 10, Kind: field.KindInput})
			f.Field(field.Field{ID: "library", Row: 10, Col: 41, Length: 10, Kind: field.KindInput})

			f.PadTo(18)
			f.Plain(field.Centered("(C) COPYRIGHT DK400 PROJECT", screen.Columns80))
			return finish(sc, cat, f, pagination.Page{}), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			user := fields.Upper("user")
			password := fields.Get("password")
			if user == "" {
				return screen.StayWithMessage("User name is required", session.LevelError), nil
			}
			sc.SetScratch("signon.user", user)

			identity, err := d.Users.Authenticate(ctx, user, password)
			if err != nil {
				if errors.Is(err, collab.ErrRejected) {
					d.recordSignOn("rejected")
					d.History.Record("WARN", "QINTER", fmt.Sprintf("Sign-on rejected for %s on %s", user, sc.Session.JobName))
					return screen.StayWithMessage("CPF1107 - Password not correct for user profile", session.LevelError), nil
				}
				return screen.Directive{}, err
			}

			sc.Session.Identity = identity
			sc.Session.SignedOnAt = time.Now()
			sc.Session.ClearScratch("signon.")
			d.recordSignOn("accepted")
			d.History.Record("INFO", "QINTER", fmt.Sprintf("Job %s/%s signed on", sc.Session.JobName, user))

			if identity.PasswordExpired {
				return screen.Directive{
					Kind:   screen.DirectiveRender,
					Target: "chgpwd",
					Text:   "Password has expired. Password must be changed",
					Level:  session.LevelWarn,
				}, nil
			}

			// The optional Menu field routes past the main menu when it
			// names a known display.
			if menu := fields.Upper("menu"); menu != "" && menu != "MAIN" {
				id := strings.ToLower(menu)
				if _, ok := cat.Screens[id]; ok {
					return screen.Goto(id), nil
				}
				return screen.Directive{
					Kind:   screen.DirectiveRender,
					Target: "mainmenu",
					Text:   fmt.Sprintf("Menu %s not found", menu),
					Level:  session.LevelWarn,
				}, nil
			}
			return screen.Goto("mainmenu"), nil
		},
	}
}

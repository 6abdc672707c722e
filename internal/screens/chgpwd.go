package screens

import (
	"context"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

const minPasswordLen = 4

// changePassword handles the forced password change after an expired
// sign-on, and the CHGPWD command.
func changePassword(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:     "chgpwd",
		Title:  "Change Password",
		Parent: "signon",

		Render: func(_ context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			f := begin(sc, cat)
			f.Plain("   Password last changed . . . . . . :  " + "*EXPIRED")
			f.Plain("")
			f.Plain("   Type new password, press Enter.")
			f.Plain("")
			f.Plain("   User profile . . . . . . . . . . . :  " + sc.Session.Identity.User)
			f.Segments(
				field.TextSpan{Text: "   New password . . . . . . . . . . . :  "},
				field.InputSpan{ID: "new", Width: 10, MaxLength: 10, Password: true},
			)
			f.Segments(
				field.TextSpan{Text: "   New password (to verify) . . . . . :  "},
				field.InputSpan{ID: "confirm", Width: 10, MaxLength: 10, Password: true},
			)
			f.Field(field.Field{ID: "new", Row: 7, Col: 41, Length: 10, Kind: field.KindPassword})
			f.Field(field.Field{ID: "confirm", Row: 8, Col: 41, Length: 10, Kind: field.KindPassword})
			return finish(sc, cat, f, pagination.Page{}), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			if out, blocked := requireSignOn(sc); blocked {
				return out, nil
			}

			next := fields.Get("new")
			confirm := fields.Get("confirm")
			switch {
			case len(next) < minPasswordLen:
				return screen.StayWithMessage("CPF2247 - New password must be at least 4 characters", session.LevelError), nil
			case next != confirm:
				return screen.StayWithMessage("CPF2221 - New passwords do not match", session.LevelError), nil
			}

			if err := d.Users.ChangePassword(ctx, sc.Session.Identity.User, next); err != nil {
				return screen.Directive{}, err
			}
			sc.Session.Identity.PasswordExpired = false

			return screen.Directive{
				Kind:   screen.DirectiveRender,
				Target: "mainmenu",
				Text:   "Password changed",
				Level:  session.LevelInfo,
			}, nil
		},
	}
}

package screens

import (
	"context"
	"fmt"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
	"github.com/dk400/dk400/internal/users"
)

const profilePageSize = 10

// workUserProfiles lists user profiles. Options: 2=Enable/Disable,
// 4=Delete, 5=Display. F6 starts the create wizard.
func workUserProfiles(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:       "wrkusrprf",
		Title:    "Work with User Profiles",
		Parent:   "mainmenu",
		PageSize: profilePageSize,

		Count: func(ctx context.Context, _ *screen.Ctx) (int, error) {
			profiles, err := d.Users.Profiles(ctx)
			if err != nil {
				return 0, err
			}
			return len(profiles), nil
		},

		Keys: map[string]screen.KeyFunc{
			"F6": func(_ context.Context, sc *screen.Ctx, _ screen.FieldMap) (screen.Directive, error) {
				if out, blocked := requireSignOn(sc); blocked {
					return out, nil
				}
				return screen.Goto("crtusrprf"), nil
			},
		},

		Render: func(ctx context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			profiles, err := d.Users.Profiles(ctx)
			if err != nil {
				return nil, err
			}
			page := sc.Paginate(len(profiles))
			lo, hi := page.Bounds()

			f := begin(sc, cat)
			f.Plain(" Type options, press Enter.  F6=Create")
			f.Plain("   2=Enable/Disable   4=Delete   5=Display")
			f.Plain("")
			f.Plain(" Opt  Profile     Class       Status     Description")

			for i, p := range profiles[lo:hi] {
				id := fmt.Sprintf("opt%d", i)
				f.Segments(
					field.TextSpan{Text: "  "},
					field.InputSpan{ID: id, Width: 1, MaxLength: 1},
					field.TextSpan{Text: "   " + field.PadTo(p.Name, 12) +
						field.PadTo(p.Class, 12) +
						field.PadTo(p.Status, 11) +
						p.Description},
				)
				f.Field(field.Field{ID: id, Row: 6 + i, Col: 3, Length: 1, Kind: field.KindInput})
			}
			return finish(sc, cat, f, page), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			if out, blocked := requireSignOn(sc); blocked {
				return out, nil
			}

			row, code, ok := fields.FirstOption("opt", profilePageSize)
			if !ok {
				return screen.Stay(), nil
			}

			profiles, err := d.Users.Profiles(ctx)
			if err != nil {
				return screen.Directive{}, err
			}
			page := sc.Paginate(len(profiles))
			lo, _ := page.Bounds()
			idx := lo + row
			if idx >= len(profiles) {
				return screen.StayWithMessage("Option row no longer exists", session.LevelWarn), nil
			}
			target := profiles[idx]

			switch code {
			case "2":
				enable := target.Status == users.StatusDisabled
				if err := d.Users.SetEnabled(ctx, target.Name, enable); err != nil {
					return screen.Directive{}, err
				}
				verb := "disabled"
				if enable {
					verb = "enabled"
				}
				return screen.StayWithMessage(fmt.Sprintf("User profile %s %s", target.Name, verb), session.LevelInfo), nil

			case "4":
				if err := d.Users.Delete(ctx, target.Name); err != nil {
					return screen.Directive{}, err
				}
				d.History.Record("INFO", "QSECOFR", fmt.Sprintf("User profile %s deleted by %s", target.Name, sc.Session.Identity.User))
				return screen.StayWithMessage(fmt.Sprintf("User profile %s deleted", target.Name), session.LevelInfo), nil

			case "5":
				detail := fmt.Sprintf("Profile %s  Class %s  Status %s  Sign-on attempts %d",
					target.Name, target.Class, target.Status, target.SignOnAttempts)
				return screen.StayWithMessage(detail, session.LevelInfo), nil

			default:
				return screen.StayWithMessage(fmt.Sprintf("Option %s not valid", code), session.LevelError), nil
			}
		},
	}
}

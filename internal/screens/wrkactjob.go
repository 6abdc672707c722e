package screens

import (
	"context"
	"fmt"
	"time"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

const activePageSize = 10

// activeJob is one display row: an interactive session or a broker job.
type activeJob struct {
	JobName     string
	User        string
	Type        string // INT or BCH
	Status      string
	Function    string
	BrokerJobID string // empty for interactive rows
}

// workActiveJobs lists interactive sessions and non-ended broker jobs.
// Options: 3=Hold, 4=End, 5=Work with.
func workActiveJobs(cat *catalog.Catalog, d Deps) *screen.Definition {
	list := func(ctx context.Context) ([]activeJob, error) {
		var rows []activeJob
		for _, snap := range d.Sessions.Snapshots() {
			rows = append(rows, activeJob{
				JobName:  snap.JobName,
				User:     snap.User,
				Type:     "INT",
				Status:   "RUN",
				Function: "CMD-" + snap.Screen,
			})
		}

		jobs, err := d.Broker.Jobs(ctx)
		if err != nil {
			return nil, err
		}
		for _, j := range jobs {
			if j.Status == "ENDED" {
				continue
			}
			rows = append(rows, activeJob{
				JobName:     j.Name,
				User:        j.User,
				Type:        "BCH",
				Status:      j.Status,
				Function:    "CMD-" + firstWord(j.Command),
				BrokerJobID: j.ID,
			})
		}
		return rows, nil
	}

	return &screen.Definition{
		ID:       "wrkactjob",
		Title:    "Work with Active Jobs",
		Parent:   "mainmenu",
		PageSize: activePageSize,

		Count: func(ctx context.Context, _ *screen.Ctx) (int, error) {
			rows, err := list(ctx)
			if err != nil {
				return 0, err
			}
			return len(rows), nil
		},

		Render: func(ctx context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			rows, err := list(ctx)
			if err != nil {
				return nil, err
			}
			page := sc.Paginate(len(rows))
			lo, hi := page.Bounds()

			f := begin(sc, cat)
			f.Plain(fmt.Sprintf(" %s   Active jobs: %d   %s",
				field.PadTo("CPU %:    .0", 20), len(rows), stamp(time.Now())))
			f.Plain("")
			f.Plain(" Type options, press Enter.")
			f.Plain("   3=Hold   4=End   5=Work with")
			f.Plain("")
			f.Plain(" Opt  Job         User        Type  Status   Function")

			for i, row := range rows[lo:hi] {
				id := fmt.Sprintf("opt%d", i)
				f.Segments(
					field.TextSpan{Text: "  "},
					field.InputSpan{ID: id, Width: 1, MaxLength: 1},
					field.TextSpan{Text: "   " + field.PadTo(row.JobName, 12) +
						field.PadTo(row.User, 12) +
						field.PadTo(row.Type, 6) +
						field.PadTo(row.Status, 9) +
						row.Function},
				)
				f.Field(field.Field{ID: id, Row: 8 + i, Col: 3, Length: 1, Kind: field.KindInput})
			}
			return finish(sc, cat, f, page), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			if out, blocked := requireSignOn(sc); blocked {
				return out, nil
			}

			row, code, ok := fields.FirstOption("opt", activePageSize)
			if !ok {
				return screen.Stay(), nil
			}

			rows, err := list(ctx)
			if err != nil {
				return screen.Directive{}, err
			}
			page := sc.Paginate(len(rows))
			lo, _ := page.Bounds()
			idx := lo + row
			if idx >= len(rows) {
				return screen.StayWithMessage("Option row no longer exists", session.LevelWarn), nil
			}
			target := rows[idx]

			switch code {
			case "3":
				if target.BrokerJobID == "" {
					return screen.StayWithMessage("Option 3 not allowed for interactive job", session.LevelError), nil
				}
				if err := d.Broker.Hold(ctx, target.BrokerJobID); err != nil {
					return screen.Directive{}, err
				}
				return screen.StayWithMessage(fmt.Sprintf("Job %s held", target.JobName), session.LevelInfo), nil

			case "4":
				if target.BrokerJobID == "" {
					return screen.StayWithMessage("Option 4 not allowed for interactive job", session.LevelError), nil
				}
				if err := d.Broker.End(ctx, target.BrokerJobID); err != nil {
					return screen.Directive{}, err
				}
				return screen.StayWithMessage(fmt.Sprintf("Job %s ended", target.JobName), session.LevelInfo), nil

			case "5":
				detail := fmt.Sprintf("Job %s  User %s  Type %s  Status %s", target.JobName, target.User, target.Type, target.Status)
				return screen.StayWithMessage(detail, session.LevelInfo), nil

			default:
				return screen.StayWithMessage(fmt.Sprintf("Option %s not valid", code), session.LevelError), nil
			}
		},
	}
}

func firstWord(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i]
		}
	}
	return s
}

package screens

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/jobs"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

// submitJob is the SBMJOB prompt: a command, a target queue and an
// optional start delay in seconds.
func submitJob(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:     "sbmjob",
		Title:  "Submit Job",
		Parent: "mainmenu",

		Render: func(_ context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			f := begin(sc, cat)
			f.Plain(" Type choices, press Enter.")
			f.Plain("")
			f.Segments(
				field.TextSpan{Text: "   Command to run . . . . . . . . . :  "},
				field.InputSpan{ID: "command", Width: 40, MaxLength: 132},
			)
			f.Segments(
				field.TextSpan{Text: "   Job queue  . . . . . . . . . . . :  "},
				field.InputSpan{ID: "jobq", Width: 10, MaxLength: 10, Value: jobs.DefaultQueue},
			)
			f.Segments(
				field.TextSpan{Text: "   Schedule delay (seconds) . . . . :  "},
				field.InputSpan{ID: "delay", Width: 6, MaxLength: 6, Value: "0"},
			)
			f.Field(field.Field{ID: "command", Row: 4, Col: 40, Length: 132, Kind: field.KindInput})
			f.Field(field.Field{ID: "jobq", Row: 5, Col: 40, Length: 10, Kind: field.KindInput, Value: jobs.DefaultQueue})
			f.Field(field.Field{ID: "delay", Row: 6, Col: 40, Length: 6, Kind: field.KindInput, Value: "0"})
			return finish(sc, cat, f, pagination.Page{}), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			if out, blocked := requireSignOn(sc); blocked {
				return out, nil
			}

			command := fields.Get("command")
			if command == "" {
				return screen.StayWithMessage("Command is required", session.LevelError), nil
			}

			delay := time.Duration(0)
			if raw := fields.Get("delay"); raw != "" {
				seconds, err := strconv.Atoi(raw)
				if err != nil || seconds < 0 {
					return screen.StayWithMessage("Schedule delay must be a non-negative number", session.LevelError), nil
				}
				delay = time.Duration(seconds) * time.Second
			}

			job, err := d.Broker.Submit(ctx, sc.Session.Identity.User, fields.Upper("jobq"), command, delay)
			if err != nil {
				return screen.Directive{}, err
			}
			d.recordJobSubmitted()

			return screen.Directive{
				Kind:   screen.DirectiveRender,
				Target: "mainmenu",
				Text:   fmt.Sprintf("Job %s submitted to job queue %s", job.Name, job.Queue),
				Level:  session.LevelInfo,
			}, nil
		},
	}
}

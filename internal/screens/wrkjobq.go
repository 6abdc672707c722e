package screens

import (
	"context"
	"fmt"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

const queuePageSize = 10

// workJobQueues lists the job queues. Options: 6=Hold, 7=Release.
func workJobQueues(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:       "wrkjobq",
		Title:    "Work with Job Queues",
		Parent:   "mainmenu",
		PageSize: queuePageSize,

		Count: func(ctx context.Context, _ *screen.Ctx) (int, error) {
			queues, err := d.Broker.Queues(ctx)
			if err != nil {
				return 0, err
			}
			return len(queues), nil
		},

		Render: func(ctx context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			queues, err := d.Broker.Queues(ctx)
			if err != nil {
				return nil, err
			}
			page := sc.Paginate(len(queues))
			lo, hi := page.Bounds()

			f := begin(sc, cat)
			f.Plain(" Type options, press Enter.")
			f.Plain("   6=Hold   7=Release")
			f.Plain("")
			f.Plain(" Opt  Queue       Subsystem   Jobs  Held  Status")

			for i, q := range queues[lo:hi] {
				id := fmt.Sprintf("opt%d", i)
				f.Segments(
					field.TextSpan{Text: "  "},
					field.InputSpan{ID: id, Width: 1, MaxLength: 1},
					field.TextSpan{Text: "   " + field.PadTo(q.Name, 12) +
						field.PadTo(q.Subsystem, 12) +
						field.PadTo(fmt.Sprintf("%d", q.Jobs), 6) +
						field.PadTo(fmt.Sprintf("%d", q.Held), 6) +
						q.Status},
				)
				f.Field(field.Field{ID: id, Row: 6 + i, Col: 3, Length: 1, Kind: field.KindInput})
			}
			return finish(sc, cat, f, page), nil
		},

		Submit: func(ctx context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
			if out, blocked := requireSignOn(sc); blocked {
				return out, nil
			}

			row, code, ok := fields.FirstOption("opt", queuePageSize)
			if !ok {
				return screen.Stay(), nil
			}

			queues, err := d.Broker.Queues(ctx)
			if err != nil {
				return screen.Directive{}, err
			}
			page := sc.Paginate(len(queues))
			lo, _ := page.Bounds()
			idx := lo + row
			if idx >= len(queues) {
				return screen.StayWithMessage("Option row no longer exists", session.LevelWarn), nil
			}
			target := queues[idx]

			switch code {
			case "6":
				if err := d.Broker.HoldQueue(ctx, target.Name); err != nil {
					return screen.Directive{}, err
				}
				return screen.StayWithMessage(fmt.Sprintf("Job queue %s held", target.Name), session.LevelInfo), nil
			case "7":
				if err := d.Broker.ReleaseQueue(ctx, target.Name); err != nil {
					return screen.Directive{}, err
				}
				return screen.StayWithMessage(fmt.Sprintf("Job queue %s released", target.Name), session.LevelInfo), nil
			default:
				return screen.StayWithMessage(fmt.Sprintf("Option %s not valid", code), session.LevelError), nil
			}
		},
	}
}

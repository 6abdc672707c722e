package screens

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
)

var bootTime = time.Now()

// systemStatus is a read-only status display. Enter round-trips unchanged;
// F5 re-renders with fresh numbers.
func systemStatus(cat *catalog.Catalog, d Deps) *screen.Definition {
	return &screen.Definition{
		ID:     "dspsyssts",
		Title:  "Display System Status",
		Parent: "mainmenu",

		Render: func(ctx context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			jobs, err := d.Broker.Jobs(ctx)
			if err != nil {
				return nil, err
			}
			var active, queued int
			for _, j := range jobs {
				switch j.Status {
				case "ACTIVE":
					active++
				case "JOBQ", "HELD":
					queued++
				}
			}

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)

			f := begin(sc, cat)
			f.Plain("                                                       " + stamp(time.Now()))
			f.Plain("")
			f.Plain(fmt.Sprintf("   %% CPU used . . . . . . . :     %6.1f", cpuEstimate()))
			f.Plain(fmt.Sprintf("   Elapsed time  . . . . . . :  %s", elapsed(time.Since(bootTime))))
			f.Plain(fmt.Sprintf("   Jobs in system  . . . . . :  %8d", len(jobs)+d.Sessions.Count()))
			f.Plain(fmt.Sprintf("   Active jobs . . . . . . . :  %8d", active+d.Sessions.Count()))
			f.Plain(fmt.Sprintf("   Jobs on job queues  . . . :  %8d", queued))
			f.Plain(fmt.Sprintf("   Interactive sessions  . . :  %8d", d.Sessions.Count()))
			f.Plain(fmt.Sprintf("   History log entries . . . :  %8d", len(d.History.Entries())))
			f.Plain("")
			f.Plain(fmt.Sprintf("   Main storage (MB) . . . . :  %8d", mem.Sys/(1<<20)))
			f.Plain(fmt.Sprintf("   Current allocated (MB)  . :  %8d", mem.Alloc/(1<<20)))
			f.Plain(fmt.Sprintf("   Goroutines  . . . . . . . :  %8d", runtime.NumGoroutine()))
			return finish(sc, cat, f, pagination.Page{}), nil
		},
	}
}

// cpuEstimate is a coarse load proxy; the grid has no live sampler.
func cpuEstimate() float64 {
	return float64(runtime.NumGoroutine()) / float64(runtime.NumCPU())
}

func elapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dk400/dk400/internal/collab"
	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/logging"
	"github.com/dk400/dk400/internal/monitoring"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngineWithMetrics(t, nil)
}

// newTestEngineWithMetrics wires a small screen catalog exercising every
// dispatch path: an entry screen, a child menu, a paginated list, and a
// screen whose handlers misbehave.
func newTestEngineWithMetrics(t *testing.T, m *monitoring.Metrics) *Engine {
	t.Helper()
	screens := screen.NewRegistry()

	render := func(id string) screen.RenderFunc {
		return func(_ context.Context, sc *screen.Ctx) (*screen.Frame, error) {
			f := screen.NewFrame(id).
				Plain("test screen " + id).
				Field(field.Field{ID: "cmd", Row: 20, Col: 8, Length: 50, Kind: field.KindInput})
			if m, ok := sc.TakeMessage(); ok {
				f.Message(m.Text, m.Level)
			}
			return f.PadTo(screen.Rows24), nil
		}
	}

	defs := []*screen.Definition{
		{
			ID:     "entry",
			Render: render("entry"),
			Submit: func(_ context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
				if fields.Upper("cmd") == "GO" {
					return screen.Goto("menu"), nil
				}
				return screen.Stay(), nil
			},
		},
		{
			ID:     "menu",
			Parent: "entry",
			Render: render("menu"),
			Submit: func(_ context.Context, sc *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
				switch fields.Upper("cmd") {
				case "LIST":
					return screen.Goto("list"), nil
				case "BROKEN":
					return screen.Goto("broken"), nil
				case "GHOST":
					return screen.Goto("nosuchscreen"), nil
				}
				return screen.Stay(), nil
			},
		},
		{
			ID:       "list",
			Parent:   "menu",
			PageSize: 10,
			Render:   render("list"),
			Count: func(_ context.Context, _ *screen.Ctx) (int, error) {
				return 25, nil
			},
		},
		{
			ID:     "broken",
			Parent: "menu",
			Render: render("broken"),
			Submit: func(_ context.Context, _ *screen.Ctx, fields screen.FieldMap) (screen.Directive, error) {
				switch fields.Get("mode") {
				case "panic":
					var m map[string]string
					m["boom"] = "x" // nil map write, the classic regression
				case "collab":
					return screen.Directive{}, fmt.Errorf("%w: store unavailable", collab.ErrFailure)
				}
				return screen.Directive{}, errors.New("handler failed")
			},
		},
	}
	for _, d := range defs {
		if err := screens.Register(d); err != nil {
			t.Fatalf("register %s: %v", d.ID, err)
		}
	}

	return New(screens, session.NewRegistry(), "entry", nil, m, logging.NewNop())
}

func TestInitRendersEntry(t *testing.T) {
	e := newTestEngine(t)
	out := e.Init(context.Background(), "c1")

	if out.Frame == nil || out.Frame.Screen != "entry" {
		t.Fatalf("Init outcome = %+v", out)
	}
	if out.End {
		t.Error("Init should not end the session")
	}
	if _, ok := e.Sessions().Get("c1"); !ok {
		t.Error("Init should register the session")
	}
}

func TestSubmitTransition(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")

	out := e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})
	if out.Frame == nil || out.Frame.Screen != "menu" {
		t.Fatalf("expected menu frame, got %+v", out)
	}

	s, _ := e.Sessions().Get("c1")
	if s.CurrentScreen != "menu" {
		t.Errorf("session screen = %s", s.CurrentScreen)
	}
}

func TestSubmitRoundTripUnchanged(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")

	// Submitting with unchanged values and no option returns the same
	// screen with no message.
	out := e.Submit(ctx, "c1", screen.FieldMap{"cmd": ""})
	if out.Frame == nil || out.Frame.Screen != "entry" {
		t.Fatalf("round trip frame = %+v", out.Frame)
	}
	if out.Message != nil {
		t.Errorf("round trip produced message %+v", out.Message)
	}
}

func TestSubmitMissingFieldsDoesNotFault(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")

	out := e.Submit(ctx, "c1", nil)
	if out.Frame == nil {
		t.Fatal("nil field map should still complete the turn")
	}
	if out.End {
		t.Error("nil field map must not end the session")
	}
}

func TestHandlerErrorContained(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "BROKEN"})

	out := e.Submit(ctx, "c1", screen.FieldMap{})
	if out.End {
		t.Fatal("handler error must not end the session")
	}
	if out.Message == nil || out.Message.Level != session.LevelError {
		t.Fatalf("expected error message, got %+v", out)
	}

	// Session survives and stays on the same screen.
	s, _ := e.Sessions().Get("c1")
	if s.CurrentScreen != "broken" {
		t.Errorf("session moved to %s", s.CurrentScreen)
	}
}

func TestHandlerPanicContained(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "BROKEN"})

	out := e.Submit(ctx, "c1", screen.FieldMap{"mode": "panic"})
	if out.End {
		t.Fatal("panic must not end the session")
	}
	if out.Message == nil || !out.Bell {
		t.Fatalf("expected bell + message, got %+v", out)
	}

	// The next turn works normally.
	out = e.FunctionKey(ctx, "c1", KeyCancel, nil)
	if out.Frame == nil || out.Frame.Screen != "menu" {
		t.Errorf("recovery turn = %+v", out)
	}
}

func TestCollaboratorFailureSurfacesText(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "BROKEN"})

	out := e.Submit(ctx, "c1", screen.FieldMap{"mode": "collab"})
	if out.Message == nil || out.Message.Level != session.LevelError {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Message.Text == "" || out.Frame != nil {
		t.Errorf("collaborator failure should be a standalone message, got %+v", out)
	}
}

func TestUnknownScreenFallsBack(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})

	out := e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GHOST"})
	if out.End {
		t.Fatal("unknown screen must not end the session")
	}
	if out.Frame == nil || out.Frame.Screen != "error" {
		t.Fatalf("expected fallback frame, got %+v", out.Frame)
	}

	// Session is parked back on the entry screen.
	s, _ := e.Sessions().Get("c1")
	if s.CurrentScreen != "entry" {
		t.Errorf("session parked on %s", s.CurrentScreen)
	}
}

func TestRollClampsOffsets(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "LIST"})

	s, _ := e.Sessions().Get("c1")

	// Rolling down repeatedly is monotonic and stops at 20 (25 items / 10).
	prev := 0
	for i := 0; i < 5; i++ {
		out := e.Roll(ctx, "c1", pagination.Forward)
		if out.Frame == nil {
			t.Fatalf("roll %d produced no frame", i)
		}
		off := s.Offset("list")
		if off < prev || off > 20 {
			t.Fatalf("roll %d: offset %d out of range", i, off)
		}
		prev = off
	}
	if s.Offset("list") != 20 {
		t.Errorf("final offset = %d", s.Offset("list"))
	}

	// Rolling up from 0 stays at 0.
	for i := 0; i < 4; i++ {
		e.Roll(ctx, "c1", pagination.Backward)
	}
	if s.Offset("list") != 0 {
		t.Errorf("offset after rolling past top = %d", s.Offset("list"))
	}
}

func TestRollOnNonListScreen(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")

	out := e.Roll(ctx, "c1", pagination.Forward)
	if out.Frame == nil || out.End {
		t.Fatalf("roll on non-list = %+v", out)
	}
}

func TestCancelDeterministicParent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "LIST"})

	// Cancel from the same screen always lands on the same parent.
	for i := 0; i < 2; i++ {
		e.Submit(ctx, "c1", screen.FieldMap{"cmd": "LIST"})
		out := e.FunctionKey(ctx, "c1", KeyCancel, nil)
		if out.Frame == nil || out.Frame.Screen != "menu" {
			t.Fatalf("cancel %d landed on %+v", i, out.Frame)
		}
	}

	// Repeated cancel walks to the entry screen, exit there ends.
	out := e.FunctionKey(ctx, "c1", KeyCancel, nil)
	if out.Frame == nil || out.Frame.Screen != "entry" {
		t.Fatalf("cancel from menu landed on %+v", out.Frame)
	}
	out = e.FunctionKey(ctx, "c1", KeyExit, nil)
	if !out.End {
		t.Fatalf("exit at entry should end, got %+v", out)
	}
	if _, ok := e.Sessions().Get("c1"); ok {
		t.Error("session should be removed after end")
	}
}

func TestUnknownKeyMessage(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")

	out := e.FunctionKey(ctx, "c1", "F19", nil)
	if out.Frame == nil {
		t.Fatal("unknown key should re-render the screen")
	}
	// The message is drained into the frame's message row by the renderer,
	// so the session must hold no leftover pending message.
	s, _ := e.Sessions().Get("c1")
	if _, ok := s.TakeMessage(); ok {
		t.Error("message not drained by render")
	}
}

func TestRefreshKeepsScreen(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})

	out := e.FunctionKey(ctx, "c1", KeyRefresh, nil)
	if out.Frame == nil || out.Frame.Screen != "menu" {
		t.Fatalf("refresh = %+v", out.Frame)
	}
}

func TestSubmitBeforeInit(t *testing.T) {
	e := newTestEngine(t)

	out := e.Submit(context.Background(), "cold", screen.FieldMap{"cmd": "GO"})
	if out.Frame == nil || out.Frame.Screen != "entry" {
		t.Fatalf("cold submit = %+v", out.Frame)
	}
	if _, ok := e.Sessions().Get("cold"); !ok {
		t.Error("cold submit should establish a session")
	}
}

// The metrics registry is process-global, so exactly one test in this
// package constructs real metrics.
func TestContainedErrorsCounted(t *testing.T) {
	m := monitoring.NewMetrics()
	e := newTestEngineWithMetrics(t, m)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "BROKEN"})

	e.Submit(ctx, "c1", screen.FieldMap{})
	if got := testutil.ToFloat64(m.ContainedErrors.WithLabelValues("handler")); got != 1 {
		t.Errorf("handler count after error = %v, want 1", got)
	}

	e.Submit(ctx, "c1", screen.FieldMap{"mode": "panic"})
	if got := testutil.ToFloat64(m.ContainedErrors.WithLabelValues("handler")); got != 2 {
		t.Errorf("handler count after panic = %v, want 2", got)
	}

	e.FunctionKey(ctx, "c1", KeyCancel, nil)
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GHOST"})
	if got := testutil.ToFloat64(m.ContainedErrors.WithLabelValues("unknown_screen")); got != 1 {
		t.Errorf("unknown_screen count = %v, want 1", got)
	}
}

func TestDuplicateInitReRenders(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	e.Init(ctx, "c1")
	e.Submit(ctx, "c1", screen.FieldMap{"cmd": "GO"})

	out := e.Init(ctx, "c1")
	if out.Frame == nil || out.End {
		t.Fatalf("repeated init = %+v", out)
	}
	if out.Frame.Screen != "menu" {
		t.Errorf("repeated init should re-render in place, got %s", out.Frame.Screen)
	}
	if e.Sessions().Count() != 1 {
		t.Errorf("session count = %d", e.Sessions().Count())
	}
}

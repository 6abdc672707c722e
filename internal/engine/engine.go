package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dk400/dk400/internal/collab"
	"github.com/dk400/dk400/internal/logging"
	"github.com/dk400/dk400/internal/monitoring"
	"github.com/dk400/dk400/internal/pagination"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

// Outcome is the engine's answer to one inbound action. The protocol
// adapter serializes it into one or more outbound frames.
type Outcome struct {
	Frame   *screen.Frame    // full-frame replace, nil if none
	Message *session.Message // standalone message, no frame replace
	Bell    bool             // transient attention signal
	End     bool             // close the visual session
}

// Engine dispatches inbound actions against the screen registry.
type Engine struct {
	screens  *screen.Registry
	sessions *session.Registry
	entry    string
	history  collab.History
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// New creates an engine. entry is the screen rendered for a fresh session.
// metrics may be nil.
func New(screens *screen.Registry, sessions *session.Registry, entry string, history collab.History, metrics *monitoring.Metrics, log *logging.Logger) *Engine {
	return &Engine{
		screens:  screens,
		sessions: sessions,
		entry:    entry,
		history:  history,
		metrics:  metrics,
		log:      log.Named("engine"),
	}
}

// Sessions exposes the session registry to the protocol adapter.
func (e *Engine) Sessions() *session.Registry { return e.sessions }

// Entry returns the configured entry screen id.
func (e *Engine) Entry() string { return e.entry }

// Init handles the first inbound action on a connection: it creates the
// session and renders the entry screen.
func (e *Engine) Init(ctx context.Context, connID string) *Outcome {
	s, err := e.sessions.Create(connID, session.Anonymous())
	if err != nil {
		if !errors.Is(err, session.ErrDuplicateSession) {
			return e.protocolFault(err.Error())
		}
		// Repeated init on a live connection re-renders in place.
		s, _ = e.sessions.Get(connID)
		if s == nil {
			return e.protocolFault("session registry inconsistent")
		}
		return e.renderCurrent(ctx, s)
	}
	s.CurrentScreen = e.entry
	return e.renderCurrent(ctx, s)
}

// Close removes the session for a closed connection.
func (e *Engine) Close(connID string) {
	if s, ok := e.sessions.Get(connID); ok && s.Identity.Authenticated {
		e.record("INFO", "QINTER", fmt.Sprintf("Job %s/%s ended", s.JobName, s.Identity.User))
	}
	e.sessions.Remove(connID)
}

// Submit dispatches an Enter press: the current screen's submit handler
// consumes the posted field values.
func (e *Engine) Submit(ctx context.Context, connID string, fields screen.FieldMap) *Outcome {
	s, out := e.requireSession(ctx, connID)
	if out != nil {
		return out
	}
	s.Touch()

	def, err := e.screens.Resolve(s.CurrentScreen)
	if err != nil {
		return e.unknownScreen(s, s.CurrentScreen)
	}
	if fields == nil {
		fields = screen.FieldMap{}
	}

	if def.Submit == nil {
		// Screens without a submit contract round-trip unchanged.
		return e.renderCurrent(ctx, s)
	}

	directive, err := e.invokeSubmit(ctx, s, def, def.Submit, fields)
	if err != nil {
		return e.contain(s, def.ID, err)
	}
	return e.apply(ctx, s, directive)
}

// FunctionKey dispatches a function key through the router.
func (e *Engine) FunctionKey(ctx context.Context, connID, key string, fields screen.FieldMap) *Outcome {
	s, out := e.requireSession(ctx, connID)
	if out != nil {
		return out
	}
	s.Touch()

	def, err := e.screens.Resolve(s.CurrentScreen)
	if err != nil {
		return e.unknownScreen(s, s.CurrentScreen)
	}
	if fields == nil {
		fields = screen.FieldMap{}
	}

	directive, err := e.route(ctx, s, def, key, fields)
	if err != nil {
		return e.contain(s, def.ID, err)
	}
	return e.apply(ctx, s, directive)
}

// Roll pages the current screen's list window and re-renders.
func (e *Engine) Roll(ctx context.Context, connID string, dir pagination.Direction) *Outcome {
	s, out := e.requireSession(ctx, connID)
	if out != nil {
		return out
	}
	s.Touch()

	def, err := e.screens.Resolve(s.CurrentScreen)
	if err != nil {
		return e.unknownScreen(s, s.CurrentScreen)
	}
	return e.apply(ctx, s, e.roll(ctx, s, def, dir))
}

// FieldUpdate records a live field edit into the session scratch store.
// No frame is produced.
func (e *Engine) FieldUpdate(connID, fieldID, value string) {
	if s, ok := e.sessions.Get(connID); ok && fieldID != "" {
		s.SetScratch("field."+fieldID, value)
		s.Touch()
		s.Publish()
	}
}

// roll advances the stored offset for a list screen. Screens without a
// Count hook have nothing to page.
func (e *Engine) roll(ctx context.Context, s *session.Session, def *screen.Definition, dir pagination.Direction) screen.Directive {
	if def.Count == nil || def.PageSize <= 0 {
		return screen.StayWithMessage("Roll not valid on this screen", session.LevelInfo)
	}
	total, err := def.Count(ctx, &screen.Ctx{Session: s, Def: def})
	if err != nil {
		e.log.Warn("count failed during roll", zap.String("screen", def.ID), zap.Error(err))
		return screen.StayWithMessage("List unavailable", session.LevelError)
	}
	s.Roll(def.ID, def.PageSize, total, dir)
	return screen.Stay()
}

// apply executes a directive and renders the resulting frame.
func (e *Engine) apply(ctx context.Context, s *session.Session, d screen.Directive) *Outcome {
	switch d.Kind {
	case screen.DirectiveEnd:
		e.Close(s.ID)
		return &Outcome{End: true}

	case screen.DirectiveStay:
		if d.Text != "" {
			s.SetMessage(d.Text, d.Level)
		}
		return e.renderCurrent(ctx, s)

	case screen.DirectiveRender:
		target, err := e.screens.Resolve(d.Target)
		if err != nil {
			return e.unknownScreen(s, d.Target)
		}
		s.CurrentScreen = target.ID
		s.ActiveField = target.DefaultField
		if d.Text != "" {
			s.SetMessage(d.Text, d.Level)
		}
		return e.renderCurrent(ctx, s)
	}
	return e.renderCurrent(ctx, s)
}

// renderCurrent renders the session's current screen with full
// containment: a failing or panicking renderer degrades to the fallback
// frame, never a dropped connection.
func (e *Engine) renderCurrent(ctx context.Context, s *session.Session) *Outcome {
	// Settle the cross-connection view before rendering so list screens
	// see this session's own row up to date.
	s.Publish()

	def, err := e.screens.Resolve(s.CurrentScreen)
	if err != nil {
		return e.unknownScreen(s, s.CurrentScreen)
	}

	frame, err := e.invokeRender(ctx, s, def)
	if err != nil {
		e.log.Error("render failed", zap.String("screen", def.ID), zap.Error(err))
		e.record("ERROR", "QSYSOPR", fmt.Sprintf("Screen %s render failed: %v", def.ID, err))
		e.recordContained("render")
		return &Outcome{Frame: fallbackFrame(def.ID, err)}
	}

	frame.ActiveField = s.ActiveField
	if frame.ActiveField >= len(frame.Fields) {
		frame.ActiveField = 0
	}
	return &Outcome{Frame: frame}
}

// invokeRender calls a renderer with panic recovery.
func (e *Engine) invokeRender(ctx context.Context, s *session.Session, def *screen.Definition) (frame *screen.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panic on %s: %v", def.ID, r)
		}
	}()
	return def.Render(ctx, &screen.Ctx{Session: s, Def: def})
}

// invokeSubmit calls a submit or key handler with panic recovery.
func (e *Engine) invokeSubmit(ctx context.Context, s *session.Session, def *screen.Definition, fn screen.SubmitFunc, fields screen.FieldMap) (d screen.Directive, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = screen.Directive{}
			err = fmt.Errorf("handler panic on %s: %v", def.ID, r)
		}
	}()
	return fn(ctx, &screen.Ctx{Session: s, Def: def}, fields)
}

// contain converts a handler error into a message outcome. The screen and
// the values the user already keyed stay untouched so the turn can be
// retried.
func (e *Engine) contain(s *session.Session, screenID string, err error) *Outcome {
	e.log.Error("turn contained", zap.String("screen", screenID), zap.String("job", s.JobName), zap.Error(err))
	e.record("ERROR", "QSYSOPR", fmt.Sprintf("Screen %s: %v", screenID, err))
	e.recordContained("handler")
	s.Publish()

	text := "Function check. Error occurred; press Enter to retry"
	if errors.Is(err, collab.ErrFailure) {
		text = truncate(err.Error(), 76)
	}
	return &Outcome{
		Message: &session.Message{Text: text, Level: session.LevelError},
		Bell:    true,
	}
}

// unknownScreen renders the generic fallback for an unresolvable id and
// parks the session back on the entry screen so the next turn recovers.
func (e *Engine) unknownScreen(s *session.Session, screenID string) *Outcome {
	e.log.Error("unknown screen", zap.String("screen", screenID), zap.String("session", s.ID))
	e.record("ERROR", "QSYSOPR", "Unknown screen "+screenID)
	e.recordContained("unknown_screen")

	s.CurrentScreen = e.entry
	s.ActiveField = 0
	s.Publish()
	return &Outcome{
		Frame: fallbackFrame(screenID, screen.ErrUnknownScreen),
		Bell:  true,
	}
}

// requireSession resolves the session for a connection. A submit arriving
// before init establishes one, so a confused client still gets a screen.
func (e *Engine) requireSession(ctx context.Context, connID string) (*session.Session, *Outcome) {
	if s, ok := e.sessions.Get(connID); ok {
		return s, nil
	}
	out := e.Init(ctx, connID)
	if out.Frame != nil {
		out.Message = &session.Message{Text: "Session re-established", Level: session.LevelInfo}
	}
	return nil, out
}

func (e *Engine) protocolFault(detail string) *Outcome {
	e.log.Error("protocol fault", zap.String("detail", detail))
	return &Outcome{
		Message: &session.Message{Text: "Unable to establish session", Level: session.LevelError},
		Bell:    true,
		End:     true,
	}
}

func (e *Engine) record(severity, source, message string) {
	if e.history != nil {
		e.history.Record(severity, source, message)
	}
}

func (e *Engine) recordContained(kind string) {
	if e.metrics != nil {
		e.metrics.RecordContainedError(kind)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

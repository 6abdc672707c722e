package screen

import (
	"context"
	"errors"
	"testing"

	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/session"
)

func noopRender(_ context.Context, sc *Ctx) (*Frame, error) {
	return NewFrame(sc.Def.ID), nil
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	def := &Definition{ID: "mainmenu", Render: noopRender}
	if err := r.Register(def); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := r.Resolve("mainmenu")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != "mainmenu" {
		t.Errorf("resolved %s", got.ID)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register(&Definition{ID: "signon", Render: noopRender})

	err := r.Register(&Definition{ID: "signon", Render: noopRender})
	if !errors.Is(err, ErrDuplicateScreen) {
		t.Errorf("expected ErrDuplicateScreen, got %v", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&Definition{ID: ""}); err == nil {
		t.Error("empty id should be rejected")
	}
	if err := r.Register(&Definition{ID: "norender"}); err == nil {
		t.Error("nil render should be rejected")
	}
}

func TestResolveUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("nosuch")
	if !errors.Is(err, ErrUnknownScreen) {
		t.Errorf("expected ErrUnknownScreen, got %v", err)
	}
}

func TestFieldMapDefaults(t *testing.T) {
	m := FieldMap{"user": "  qsecofr  "}

	if m.Get("user") != "qsecofr" {
		t.Errorf("Get = %q", m.Get("user"))
	}
	if m.Upper("user") != "QSECOFR" {
		t.Errorf("Upper = %q", m.Upper("user"))
	}
	if m.Get("password") != "" {
		t.Error("absent key should read as empty string")
	}

	var nilMap FieldMap
	if nilMap.Get("anything") != "" {
		t.Error("nil map should read as empty string")
	}
}

func TestFirstOption(t *testing.T) {
	m := FieldMap{"opt_0": "", "opt_2": "4", "opt_5": "4", "cmd": ""}

	row, code, ok := m.FirstOption("opt_", 10)
	if !ok || row != 2 || code != "4" {
		t.Errorf("FirstOption = %d, %q, %v", row, code, ok)
	}

	if _, _, ok := (FieldMap{}).FirstOption("opt_", 10); ok {
		t.Error("no options should report not found")
	}
}

func TestFrameBuilder(t *testing.T) {
	f := NewFrame("signon").
		Plain("").
		Segments(
			field.TextSpan{Text: "  User . . :  "},
			field.InputSpan{ID: "user", Width: 10},
		).
		Field(field.Field{ID: "user", Row: 1, Col: 15, Length: 10, Kind: field.KindInput}).
		PadTo(Rows24)

	if f.Columns != Columns80 {
		t.Errorf("Columns = %d", f.Columns)
	}
	if len(f.Rows) != Rows24 {
		t.Errorf("PadTo left %d rows", len(f.Rows))
	}
	if len(f.Fields) != 1 || f.Fields[0].ID != "user" {
		t.Errorf("Fields = %+v", f.Fields)
	}
}

func TestFrameFieldClips(t *testing.T) {
	f := NewFrame("x").Field(field.Field{ID: "cmd", Length: 3, Kind: field.KindInput, Value: "WRKACTJOB"})
	if f.Fields[0].Value != "WRK" {
		t.Errorf("field value not clipped: %q", f.Fields[0].Value)
	}
}

func TestCtxPaginate(t *testing.T) {
	s := session.New("conn-1", session.Anonymous())
	s.SetOffset("wrkactjob", 10)

	sc := &Ctx{Session: s, Def: &Definition{ID: "wrkactjob", PageSize: 10}}
	p := sc.Paginate(25)
	if p.Offset != 10 || !p.HasMore || !p.HasPrevious {
		t.Errorf("Paginate = %+v", p)
	}
}

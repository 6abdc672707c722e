package screen

import (
	"github.com/dk400/dk400/internal/field"
)

// Screen geometry. Every frame is a full re-render of a fixed grid.
const (
	Columns80  = 80
	Columns132 = 132
	Rows24     = 24
)

// Frame is the unit sent to a client for one turn. It is produced fresh on
// every render and never mutated after it reaches the transport.
type Frame struct {
	Screen      string
	Columns     int
	Rows        []field.Row
	Fields      []field.Field
	ActiveField int
}

// NewFrame starts an 80-column frame for a screen.
func NewFrame(screenID string) *Frame {
	return &Frame{Screen: screenID, Columns: Columns80}
}

// Wide switches the frame to 132 columns.
func (f *Frame) Wide() *Frame {
	f.Columns = Columns132
	return f
}

// Plain appends a static row.
func (f *Frame) Plain(text string) *Frame {
	f.Rows = append(f.Rows, field.Plain(text))
	return f
}

// Segments appends a segmented row.
func (f *Frame) Segments(spans ...field.Span) *Frame {
	f.Rows = append(f.Rows, field.Segments(spans...))
	return f
}

// Field declares an input field belonging to the frame. Fields are ordered;
// the first declared field is the default focus target.
func (f *Frame) Field(fld field.Field) *Frame {
	f.Fields = append(f.Fields, fld.Clip())
	return f
}

// PadTo appends blank rows until the frame has at least n rows.
func (f *Frame) PadTo(n int) *Frame {
	for len(f.Rows) < n {
		f.Rows = append(f.Rows, field.Plain(""))
	}
	return f
}

// Message appends the session's pending one-shot message as a classed text
// row, or a blank row when none is pending.
func (f *Frame) Message(text, level string) *Frame {
	if text == "" {
		return f.Plain("")
	}
	return f.Segments(field.TextSpan{Text: " " + text, Class: "field-" + level})
}

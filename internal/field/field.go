package field

import (
	"fmt"
	"strings"
)

// Kind classifies how a field is presented and edited.
type Kind string

const (
	KindInput     Kind = "input"
	KindProtected Kind = "protected"
	KindPassword  Kind = "password"
)

// Field describes one displayable/editable region on a screen.
type Field struct {
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Length int    `json:"length"`
	Kind   Kind   `json:"kind"`
	Value  string `json:"value,omitempty"`
}

// Validate checks the field invariants: a positive length and a value that
// fits inside it.
func (f Field) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("field ID is required")
	}
	if f.Length < 1 {
		return fmt.Errorf("field %s: length must be >= 1, got %d", f.ID, f.Length)
	}
	if len(f.Value) > f.Length {
		return fmt.Errorf("field %s: value exceeds length %d", f.ID, f.Length)
	}
	return nil
}

// Clip returns a copy of the field with the value truncated to the declared
// length. Inbound values are clipped rather than rejected.
func (f Field) Clip() Field {
	if len(f.Value) > f.Length {
		f.Value = f.Value[:f.Length]
	}
	return f
}

// PadTo pads s with trailing spaces to width, truncating if it is longer.
// Plain rows are space-padded to the screen width before transmission.
func PadTo(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Centered centers s inside width columns.
func Centered(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s
}

package engine

import (
	"errors"

	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/screen"
)

// fallbackFrame is the generic error screen shown when a screen cannot be
// resolved or rendered. It replaces the display rather than dropping the
// connection; Enter returns the user to a known screen.
func fallbackFrame(screenID string, cause error) *screen.Frame {
	reason := "Display program error"
	if errors.Is(cause, screen.ErrUnknownScreen) {
		reason = "Display " + screenID + " not found"
	}

	f := screen.NewFrame("error").
		Plain("").
		Segments(field.TextSpan{Text: field.Centered("Error Information", screen.Columns80), Class: "field-highlight"}).
		Plain("").
		Plain("  " + reason).
		Plain("").
		Plain("  The request could not be completed. The session remains active.").
		Plain("").
		Plain("  Press Enter to continue.").
		PadTo(screen.Rows24 - 1).
		Plain("  F3=Exit   F12=Cancel")
	return f
}

// Package field provides the value objects that make up one terminal row.
//
// A screen is a fixed grid of 24 rows by 80 or 132 columns. Each row is
// either plain static text or an ordered sequence of typed spans: static
// text with a display class, an editable input region, or a clickable
// hotspot bound to an action tag.
//
// Key Components:
//   - Field: one displayable/editable region with position and length
//   - Row: a plain or segmented display row
//   - TextSpan, InputSpan, HotspotSpan: the closed set of row segments
//
// Rows and fields are built fresh for every frame and never mutated after
// they are handed to the transport.
package field

// Package pagination computes the visible window of a list screen.
//
// Offsets are owned by the session; this package holds the pure window
// arithmetic: clamping, paging forward and backward, and the More/Bottom
// indicators.
package pagination

// Direction selects which way a roll moves the window.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Page describes one visible window over a list.
type Page struct {
	Offset      int
	Size        int
	Total       int
	HasMore     bool
	HasPrevious bool
}

// Clamp normalizes an offset against the list size so the page is never
// empty unless the list is. A stored offset past the end lands on the last
// full-or-partial page.
func Clamp(offset, size, total int) int {
	if offset < 0 {
		return 0
	}
	if total == 0 {
		return 0
	}
	if offset >= total {
		last := ((total - 1) / size) * size
		return last
	}
	return offset
}

// Window computes the page at offset, clamping first.
func Window(offset, size, total int) Page {
	offset = Clamp(offset, size, total)
	return Page{
		Offset:      offset,
		Size:        size,
		Total:       total,
		HasMore:     offset+size < total,
		HasPrevious: offset > 0,
	}
}

// Bounds returns the half-open slice range [start, end) for the page.
func (p Page) Bounds() (start, end int) {
	start = p.Offset
	end = p.Offset + p.Size
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// Advance moves an offset one page in the given direction. Forward is
// clamped so the next page always shows at least one item if any remain;
// backward is floored at zero.
func Advance(offset, size, total int, dir Direction) int {
	offset = Clamp(offset, size, total)
	switch dir {
	case Forward:
		if offset+size < total {
			return offset + size
		}
		return offset
	case Backward:
		if offset-size > 0 {
			return offset - size
		}
		return 0
	}
	return offset
}

// Visible slices items to the clamped window at offset.
func Visible[T any](items []T, offset, size int) ([]T, Page) {
	p := Window(offset, size, len(items))
	start, end := p.Bounds()
	return items[start:end], p
}

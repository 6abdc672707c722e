package field

import "encoding/json"

// Span is one segment of a segmented row. The set of implementations is
// closed: TextSpan, InputSpan, HotspotSpan.
type Span interface {
	spanType() string
}

// TextSpan is static text with an optional display class.
type TextSpan struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
}

func (TextSpan) spanType() string { return "text" }

// InputSpan references an editable field inside a row.
type InputSpan struct {
	ID        string `json:"id"`
	Value     string `json:"value,omitempty"`
	Width     int    `json:"width"`
	MaxLength int    `json:"maxLength,omitempty"`
	Class     string `json:"class,omitempty"`
	Password  bool   `json:"password,omitempty"`
}

func (InputSpan) spanType() string { return "input" }

// HotspotSpan is a clickable region bound to an action tag such as
// "page-down" or "function-key-3".
type HotspotSpan struct {
	Action string `json:"action"`
	Text   string `json:"text"`
	Class  string `json:"class,omitempty"`
}

func (HotspotSpan) spanType() string { return "hotspot" }

// Row is one display row: either plain text or an ordered list of spans.
// A nil Spans slice marks a plain row.
type Row struct {
	Text  string
	Spans []Span
}

// Plain builds a static row.
func Plain(text string) Row { return Row{Text: text} }

// Segments builds a segmented row from spans.
func Segments(spans ...Span) Row { return Row{Spans: spans} }

// IsPlain reports whether the row is static text.
func (r Row) IsPlain() bool { return r.Spans == nil }

// MarshalJSON encodes a plain row as a string and a segmented row as an
// array of tagged span objects.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.IsPlain() {
		return json.Marshal(r.Text)
	}
	out := make([]map[string]interface{}, 0, len(r.Spans))
	for _, s := range r.Spans {
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		m["type"] = s.spanType()
		out = append(out, m)
	}
	return json.Marshal(out)
}

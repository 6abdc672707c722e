// Package protocol defines the JSON wire frames exchanged with terminal
// clients and their codec.
//
// Inbound frames are client actions: init, submit, function_key, roll,
// field_update. Outbound frames are full screen replacements, standalone
// messages, exit notices and bell signals. Encoding uses sonic for both
// directions.
package protocol

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/dk400/dk400/internal/field"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/session"
)

// Inbound action names.
const (
	ActionInit        = "init"
	ActionSubmit      = "submit"
	ActionFunctionKey = "function_key"
	ActionRoll        = "roll"
	ActionFieldUpdate = "field_update"
)

// Outbound frame types.
const (
	TypeScreen  = "screen"
	TypeMessage = "message"
	TypeExit    = "exit"
	TypeBell    = "bell"
)

// Inbound is one client action frame.
type Inbound struct {
	Action    string            `json:"action"`
	Screen    string            `json:"screen,omitempty"`
	Key       string            `json:"key,omitempty"`
	Direction string            `json:"direction,omitempty"`
	Field     string            `json:"field,omitempty"`
	Value     string            `json:"value,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Decode parses an inbound action frame.
func Decode(data []byte) (*Inbound, error) {
	var in Inbound
	if err := sonic.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("malformed action frame: %w", err)
	}
	if in.Action == "" {
		return nil, fmt.Errorf("action frame missing action")
	}
	return &in, nil
}

// FieldMap converts the posted fields into the engine's defaulting map.
func (in *Inbound) FieldMap() screen.FieldMap {
	if in.Fields == nil {
		return screen.FieldMap{}
	}
	return screen.FieldMap(in.Fields)
}

// ScreenFrame is the outbound full-frame replacement.
type ScreenFrame struct {
	Type        string        `json:"type"`
	Screen      string        `json:"screen"`
	Cols        int           `json:"cols"`
	Content     []field.Row   `json:"content"`
	Fields      []field.Field `json:"fields"`
	ActiveField int           `json:"activeField"`
}

// MessageFrame carries a message without replacing the screen.
type MessageFrame struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Level string `json:"level"`
}

// ControlFrame covers exit and bell.
type ControlFrame struct {
	Type string `json:"type"`
}

// EncodeScreen serializes a rendered frame. Plain rows are space-padded to
// the frame's column width before transmission.
func EncodeScreen(f *screen.Frame) ([]byte, error) {
	rows := make([]field.Row, len(f.Rows))
	for i, r := range f.Rows {
		if r.IsPlain() {
			rows[i] = field.Plain(field.PadTo(r.Text, f.Columns))
		} else {
			rows[i] = r
		}
	}

	fields := f.Fields
	if fields == nil {
		fields = []field.Field{}
	}

	return sonic.Marshal(ScreenFrame{
		Type:        TypeScreen,
		Screen:      f.Screen,
		Cols:        f.Columns,
		Content:     rows,
		Fields:      fields,
		ActiveField: f.ActiveField,
	})
}

// EncodeMessage serializes a standalone message frame.
func EncodeMessage(m session.Message) ([]byte, error) {
	level := m.Level
	if level == "" {
		level = session.LevelInfo
	}
	return sonic.Marshal(MessageFrame{Type: TypeMessage, Text: m.Text, Level: level})
}

// EncodeExit serializes the session-end notice.
func EncodeExit() ([]byte, error) {
	return sonic.Marshal(ControlFrame{Type: TypeExit})
}

// EncodeBell serializes the attention signal.
func EncodeBell() ([]byte, error) {
	return sonic.Marshal(ControlFrame{Type: TypeBell})
}

// HotspotKey translates a hotspot action tag into the function-key router
// vocabulary: "function-key-3" becomes "F3", "page-down"/"page-up" map to
// the roll keys. Unknown tags pass through unchanged and fall out as
// "key not valid".
func HotspotKey(action string) string {
	switch action {
	case "page-down":
		return "PageDown"
	case "page-up":
		return "PageUp"
	}
	if n, ok := strings.CutPrefix(action, "function-key-"); ok {
		return "F" + n
	}
	return action
}

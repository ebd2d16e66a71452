package tree

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Level values used by the two-phase graph builder.
const (
	LevelHigh = "1"
	LevelLow  = "2"
)

// Flex is a scalar that decodes from either a JSON string or a JSON number.
// Numbers keep their literal text, so 7 and "7" decode to the same value.
type Flex string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = Flex(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler. Integer-looking values are written
// as numbers so numeric ids survive a round trip unchanged.
func (f Flex) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(f), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(f) {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

// String returns the raw text.
func (f Flex) String() string { return string(f) }

// Entry is one node of the intent tree: an intent (high or low) or a record.
//
// The zero value is an empty record.
type Entry struct {
	ID Flex

	// Intent fields
	Intent      string
	Description string
	Child       []Entry
	ChildNum    int
	Priority    Flex
	Group       []Entry
	RawLevel    Flex // see Level
	Parent      Flex

	// Record fields
	Content   string
	Comment   string
	Context   string
	Timestamp Flex

	IsLeafNode bool
	Immutable  bool
}

// NewRecord returns a record entry with the given content.
func NewRecord(content string) Entry {
	return Entry{Content: content, IsLeafNode: true}
}

// CarriesIntent reports whether the entry names an intent.
func (e Entry) CarriesIntent() bool { return e.Intent != "" }

// Level returns the entry's level, defaulting to [LevelHigh] when absent.
func (e Entry) Level() string {
	if e.RawLevel == "" {
		return LevelHigh
	}
	return string(e.RawLevel)
}

type entryJSON struct {
	ID          Flex    `json:"id,omitempty"`
	Intent      string  `json:"intent,omitempty"`
	Description string  `json:"description,omitempty"`
	Content     string  `json:"content,omitempty"`
	Comment     string  `json:"comment,omitempty"`
	Context     string  `json:"context,omitempty"`
	Timestamp   Flex    `json:"timestamp,omitempty"`
	IsLeafNode  bool    `json:"isLeafNode"`
	Immutable   *bool   `json:"immutable,omitempty"`
	Child       []Entry `json:"child,omitempty"`
	ChildNum    *int    `json:"child_num,omitempty"`
	Priority    Flex    `json:"priority,omitempty"`
	Group       []Entry `json:"group,omitempty"`
	Level       Flex    `json:"level,omitempty"`
	Parent      Flex    `json:"parent,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. A bare string decodes to a
// record with that content.
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = NewRecord(s)
		return nil
	}

	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{
		ID:          raw.ID,
		Intent:      raw.Intent,
		Description: raw.Description,
		Content:     raw.Content,
		Comment:     raw.Comment,
		Context:     raw.Context,
		Timestamp:   raw.Timestamp,
		IsLeafNode:  raw.IsLeafNode,
		Child:       raw.Child,
		Priority:    raw.Priority,
		Group:       raw.Group,
		RawLevel:    raw.Level,
		Parent:      raw.Parent,
	}
	if raw.Immutable != nil {
		e.Immutable = *raw.Immutable
	}
	if raw.ChildNum != nil {
		e.ChildNum = *raw.ChildNum
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Intents always carry immutable and
// child_num; records carry immutable only when set.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		ID:          e.ID,
		Intent:      e.Intent,
		Description: e.Description,
		Content:     e.Content,
		Comment:     e.Comment,
		Context:     e.Context,
		Timestamp:   e.Timestamp,
		IsLeafNode:  e.IsLeafNode,
		Child:       e.Child,
		Priority:    e.Priority,
		Group:       e.Group,
		Level:       e.RawLevel,
		Parent:      e.Parent,
	}
	immutable := e.Immutable
	if e.CarriesIntent() {
		childNum := e.ChildNum
		out.ChildNum = &childNum
		out.Immutable = &immutable
	} else if immutable {
		out.Immutable = &immutable
	}
	return json.Marshal(out)
}

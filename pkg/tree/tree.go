package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/intentgraph/pkg/errors"
)

// ReservedPrefix marks item names that are not intents.
const ReservedPrefix = "__"

// Item is a named top-level entry.
type Item struct {
	Name  string
	Entry Entry
}

// Tree is the persisted intent-tree document. Items keep source order.
//
// The zero value is an empty tree with no scenario.
type Tree struct {
	Scenario string
	Items    []Item
}

// IsReserved reports whether an item name uses the reserved prefix.
func IsReserved(name string) bool { return strings.HasPrefix(name, ReservedPrefix) }

// Get returns the entry stored under name.
func (t *Tree) Get(name string) (Entry, bool) {
	for _, it := range t.Items {
		if it.Name == name {
			return it.Entry, true
		}
	}
	return Entry{}, false
}

// Set stores e under name, replacing an existing item in place or appending
// a new one.
func (t *Tree) Set(name string, e Entry) {
	for i := range t.Items {
		if t.Items[i].Name == name {
			t.Items[i].Entry = e
			return
		}
	}
	t.Items = append(t.Items, Item{Name: name, Entry: e})
}

// Len returns the number of top-level items, reserved ones included.
func (t *Tree) Len() int { return len(t.Items) }

// Names returns item names in source order.
func (t *Tree) Names() []string {
	names := make([]string, len(t.Items))
	for i, it := range t.Items {
		names[i] = it.Name
	}
	return names
}

// =============================================================================
// JSON Codec
// =============================================================================

// MarshalJSON implements json.Marshaler, writing items in order.
func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"scenario":`)
	sc, err := json.Marshal(t.Scenario)
	if err != nil {
		return nil, err
	}
	buf.Write(sc)
	buf.WriteString(`,"item":{`)
	for i, it := range t.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(it.Entry)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", it.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. The "item" key is required and
// must hold an object.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidTree, err, "decode tree")
	}

	var scenario string
	if raw, ok := top["scenario"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &scenario); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidTree, err, "decode scenario")
		}
	}

	raw, ok := top["item"]
	if !ok || isNull(raw) {
		return errors.New(errors.ErrCodeInvalidTree, "missing top-level \"item\" object")
	}
	items, err := decodeItems(raw)
	if err != nil {
		return err
	}

	t.Scenario = scenario
	t.Items = items
	return nil
}

func decodeItems(raw json.RawMessage) ([]Item, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode item")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New(errors.ErrCodeInvalidTree, "\"item\" must be an object")
	}

	var items []Item
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode item key")
		}
		name, _ := tok.(string)
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode item %q", name)
		}
		items = append(items, Item{Name: name, Entry: e})
	}
	return items, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// =============================================================================
// Read / Write API
// =============================================================================

// Parse decodes a tree from JSON bytes.
func Parse(data []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode tree")
	}
	return &t, nil
}

// Read decodes a tree from r.
func Read(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	return Parse(data)
}

// ReadFile decodes the tree stored at path.
func ReadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal encodes t as compact JSON.
func Marshal(t *Tree) ([]byte, error) {
	return json.Marshal(t)
}

// Write encodes t as indented JSON to w.
func Write(t *Tree, w io.Writer) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// WriteFile writes t as indented JSON to path.
func WriteFile(t *Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(t, f)
}

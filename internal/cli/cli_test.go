package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/reorg"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/graph"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

const travelTree = `{
  "scenario": "trip planning",
  "item": {
    "Travel": {
      "id": 1,
      "intent": "Travel",
      "immutable": true,
      "child": [
        {"intent": "Barcelona", "child": [{"content": "see Gaudí works", "isLeafNode": true}]}
      ]
    },
    "Spain tips": {"id": 2, "child": ["visit Toledo"]}
  }
}`

func TestMain(m *testing.M) {
	uiOut = io.Discard
	os.Exit(m.Run())
}

// testCLI returns a CLI isolated from the user's config, a tree file and
// the buffer receiving command output.
func testCLI(t *testing.T) (*CLI, string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	path := filepath.Join(dir, "tree.json")
	if err := os.WriteFile(path, []byte(travelTree), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)
	return c, path, &out
}

func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestValidate(t *testing.T) {
	c, path, _ := testCLI(t)
	if err := run(t, c, "validate", path); err != nil {
		t.Errorf("validate: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte(`{"item": {"x": {"level": "3"}}}`), 0o644)
	if err := run(t, c, "validate", bad); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("validate(bad level) error = %v, want %s", err, errors.ErrCodeInvalidTree)
	}
}

func TestBuild(t *testing.T) {
	c, path, out := testCLI(t)
	if err := run(t, c, "build", path, "--confirmed", "Barcelona"); err != nil {
		t.Fatalf("build: %v", err)
	}
	g, err := graph.Unmarshal(out.Bytes())
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(g.Nodes) != 5 {
		t.Errorf("nodes = %d, want 5", len(g.Nodes))
	}
	for _, n := range g.Nodes {
		want := n.Label == "Travel" || n.Label == "Barcelona"
		if n.Confirmed != want {
			t.Errorf("%q confirmed = %v, want %v", n.Label, n.Confirmed, want)
		}
	}
}

func TestLayout(t *testing.T) {
	c, path, out := testCLI(t)
	if err := run(t, c, "layout", path, "--orientation", "columnar", "--width", "800", "--height", "600"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	l := decodeLayout(t, out.Bytes())
	if l.Orientation != "columnar" || len(l.Positions) != 5 || l.Width != 800 {
		t.Errorf("layout = %+v", l)
	}

	if err := run(t, c, "layout", path, "--orientation", "diagonal"); err == nil {
		t.Error("layout with unknown orientation succeeded")
	}
}

func TestRenderDOT(t *testing.T) {
	c, path, out := testCLI(t)
	if err := run(t, c, "render", path, "-f", "dot", "-o", "-"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "digraph G") || !strings.Contains(out.String(), `cluster_`) {
		t.Errorf("output is not a clustered DOT graph:\n%s", out)
	}

	if err := run(t, c, "render", path, "-f", "png"); err == nil {
		t.Error("render with unsupported format succeeded")
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   errors.Code
		expect string
	}{
		{"merge high intents", []string{"Spain tips", "Travel", "--op", "merge"}, "", "Travel + Spain tips"},
		{"single option needs no flag", []string{"visit Toledo", "Barcelona"}, "", "visit Toledo"},
		{"ambiguous without terminal", []string{"Spain tips", "Travel"}, errors.ErrCodeInvalidInput, ""},
		{"record onto record", []string{"visit Toledo", "see Gaudí works"}, errors.ErrCodeUnsupportedMerge, ""},
		{"operation not allowed for pair", []string{"Spain tips", "Travel", "--op", "attach"}, errors.ErrCodeUnsupportedMerge, ""},
		{"unknown node", []string{"Lisbon", "Travel"}, errors.ErrCodeNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, path, out := testCLI(t)
			err := run(t, c, append([]string{"move", path}, tt.args...)...)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("move: %v", err)
			}
			tr, err := tree.Parse(out.Bytes())
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !strings.Contains(out.String(), tt.expect) {
				t.Errorf("tree %v does not mention %q", tr.Names(), tt.expect)
			}
		})
	}
}

func TestDrag(t *testing.T) {
	c, path, _ := testCLI(t)
	f, err := c.readForest(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	travel, _ := f.FindByLabel("Travel")
	to := fmt.Sprintf("%g,%g", travel.Position.X, travel.Position.Y)

	if err := run(t, c, "drag", path, "Spain tips", "--to", "5000,5000", "--to", to); err != nil {
		t.Errorf("drag: %v", err)
	}
	if err := run(t, c, "drag", path, "Spain tips", "--to", "nowhere"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("drag with bad point error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestStoreCommands(t *testing.T) {
	c, path, out := testCLI(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := "[store]\nbackend = \"file\"\nnamespace = \"alice\"\n[store.file]\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "store")) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(t, c, "--config", cfgPath, "store", "put", "intent-tree", path); err != nil {
		t.Fatalf("store put: %v", err)
	}
	if err := run(t, c, "--config", cfgPath, "store", "get", "intent-tree"); err != nil {
		t.Fatalf("store get: %v", err)
	}
	tr, err := tree.Parse(out.Bytes())
	if err != nil || tr.Scenario != "trip planning" {
		t.Errorf("stored tree = %v, %v", tr, err)
	}
	if err := run(t, c, "--config", cfgPath, "store", "delete", "intent-tree"); err != nil {
		t.Fatalf("store delete: %v", err)
	}
	if err := run(t, c, "--config", cfgPath, "store", "get", "intent-tree"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("get after delete error = %v, want %s", err, errors.ErrCodeNotFound)
	}
	if err := run(t, c, "--config", cfgPath, "store", "get", "secrets"); err == nil {
		t.Error("get of unknown kind succeeded")
	}
}

func TestExtractWithoutService(t *testing.T) {
	c, _, _ := testCLI(t)
	recs := filepath.Join(t.TempDir(), "records.json")
	os.WriteFile(recs, []byte(`[{"content": "book flights"}]`), 0o644)
	if err := run(t, c, "extract", recs); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("extract error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestCompletion(t *testing.T) {
	c, _, _ := testCLI(t)
	root := c.RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(buf.String(), "intentgraph") {
		t.Error("bash completion does not mention the command")
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    forest.Point
		wantErr bool
	}{
		{"10,20", forest.Point{X: 10, Y: 20}, false},
		{" -1.5 , 3 ", forest.Point{X: -1.5, Y: 3}, false},
		{"10", forest.Point{}, true},
		{"a,b", forest.Point{}, true},
	}
	for _, tt := range tests {
		got, err := parsePoint(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parsePoint(%q) = %v, %v, want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestResolveNode(t *testing.T) {
	f := forest.New("")
	a := f.AddNode(forest.Node{Type: forest.HighIntent, Label: "Travel"})
	b := f.AddNode(forest.Node{Type: forest.HighIntent, Label: "42"})

	tests := []struct {
		ref  string
		want forest.NodeID
	}{
		{"Travel", a.ID},
		{"1", a.ID},
		{"42", b.ID},
	}
	for _, tt := range tests {
		n, err := resolveNode(f, tt.ref)
		if err != nil || n.ID != tt.want {
			t.Errorf("resolveNode(%q) = %v, %v, want %d", tt.ref, n, err, tt.want)
		}
	}
	if _, err := resolveNode(f, "Lisbon"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("resolveNode(missing) error = %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"":          formatSVG,
		"out.svg":   formatSVG,
		"out.dot":   formatDOT,
		"graph.GV":  formatDOT,
		"notes.txt": formatSVG,
	}
	for in, want := range tests {
		if got := formatFromPath(in); got != want {
			t.Errorf("formatFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOperationPicker(t *testing.T) {
	p := &reorg.Pending{Allowed: []reorg.Operation{reorg.Merge, reorg.DemoteAsChild}}

	var m tea.Model = NewOperationPickerModel(p, "Spain tips", "Travel")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(OperationPickerModel).Selected; got != reorg.DemoteAsChild {
		t.Errorf("Selected = %q, want %q", got, reorg.DemoteAsChild)
	}
	if cmd == nil {
		t.Error("enter should quit the picker")
	}
	if !strings.Contains(m.View(), `Drop "Spain tips" onto "Travel"`) {
		t.Errorf("View() = %q", m.View())
	}

	m, _ = NewOperationPickerModel(p, "a", "b").Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if got := m.(OperationPickerModel).Selected; got != "" {
		t.Errorf("Selected after quit = %q, want none", got)
	}
}

func decodeLayout(t *testing.T, data []byte) graph.Layout {
	t.Helper()
	var l graph.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	return l
}

package nodelink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
)

func sample() *forest.Forest {
	f := forest.New("trip")
	travel := f.AddNode(forest.Node{Type: forest.HighIntent, Label: "Travel", Confirmed: true})
	barcelona := f.AddNode(forest.Node{Type: forest.LowIntent, Label: "Barcelona", Confirmed: true})
	gaudi := f.AddNode(forest.Node{Type: forest.Record, Label: "see Gaudí works"})
	f.AddEdge(travel.ID, barcelona.ID)
	f.AddEdge(barcelona.ID, gaudi.ID)
	return f
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})
	for _, want := range []string{
		"rankdir=TB",
		`label="trip"`,
		`subgraph "cluster_high-intent"`,
		`subgraph "cluster_low-intent"`,
		`subgraph "cluster_record"`,
		`n1 [label="Travel"`,
		"n1 -> n2 [style=solid]",
		"n2 -> n3 [style=dashed]",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, "penwidth=3") != 2 {
		t.Errorf("want 2 bold nodes:\n%s", dot)
	}
}

func TestToDOTColumnar(t *testing.T) {
	if dot := ToDOT(sample(), Options{Orientation: layout.Columnar}); !strings.Contains(dot, "rankdir=LR") {
		t.Errorf("columnar DOT missing rankdir=LR:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true})
	if !strings.Contains(dot, `label="Barcelona\nlow-intent"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTEmptyTiersOmitted(t *testing.T) {
	f := forest.New("")
	f.AddNode(forest.Node{Type: forest.HighIntent, Label: "Solo"})
	dot := ToDOT(f, Options{})
	if strings.Contains(dot, "cluster_record") || strings.Contains(dot, "label=\"\"") {
		t.Errorf("unexpected output:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`viewBox="0 0 100.00 50.00" width="100" height="50"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg/>")); string(got) != "<svg/>" {
		t.Errorf("normalizeViewBox(no viewBox) = %s", got)
	}
}

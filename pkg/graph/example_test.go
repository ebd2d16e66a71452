package graph_test

import (
	"fmt"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/graph"
)

func ExampleFromForest() {
	f := forest.New("trip")
	travel := f.AddNode(forest.Node{Type: forest.HighIntent, Label: "Travel"})
	barcelona := f.AddNode(forest.Node{Type: forest.LowIntent, Label: "Barcelona"})
	f.AddEdge(travel.ID, barcelona.ID)

	g := graph.FromForest(f)
	for _, n := range g.Nodes {
		fmt.Printf("%d %s %q parent=%d\n", n.ID, n.Type, n.Label, n.Parent)
	}
	// Output:
	// 1 high-intent "Travel" parent=0
	// 2 low-intent "Barcelona" parent=1
}

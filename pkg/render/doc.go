// Package render groups the visual output formats for intent forests.
//
// Positions come from [layout]; renderers only decide how nodes and edges
// look. The [nodelink] subpackage produces Graphviz DOT and SVG:
//
//	f, _ := io.BuildGraph(t, nil)
//	dot := nodelink.ToDOT(f, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// Interactive clients draw directly from the JSON layout in [graph] instead.
//
// [layout]: github.com/matzehuels/intentgraph/pkg/core/layout
// [nodelink]: github.com/matzehuels/intentgraph/pkg/render/nodelink
// [graph]: github.com/matzehuels/intentgraph/pkg/graph
package render

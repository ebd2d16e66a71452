// Package nodelink renders intent forests as node-link diagrams.
//
// [ToDOT] produces Graphviz DOT source with one cluster per tier
// (high-intent, low-intent, record). Confirmed nodes have a bold border;
// edges touching an unconfirmed node are dashed. [RenderSVG] lays out and renders
// the DOT in-process with github.com/goccy/go-graphviz:
//
//	dot := nodelink.ToDOT(f, nodelink.Options{Orientation: layout.Stacked})
//	svg, err := nodelink.RenderSVG(dot)
//
// The DOT can also be saved and processed with external Graphviz tools.
package nodelink

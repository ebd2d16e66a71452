package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
)

// Orientation selects the tier axis.
type Orientation int

const (
	// Stacked places tiers top to bottom; siblings spread along X.
	Stacked Orientation = iota
	// Columnar places tiers left to right; siblings spread along Y.
	Columnar
)

// String returns the wire name of the orientation.
func (o Orientation) String() string {
	switch o {
	case Stacked:
		return "stacked"
	case Columnar:
		return "columnar"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// ParseOrientation parses "stacked" or "columnar". The empty string maps to
// Stacked.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "stacked":
		return Stacked, nil
	case "columnar":
		return Columnar, nil
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// Viewport is the visible area the layout is scaled to.
type Viewport struct {
	Width, Height float64
}

// Options controls the layout. Spacing holds the base sibling spacing per
// tier, indexed by [forest.NodeType.Tier].
type Options struct {
	Orientation  Orientation
	Viewport     Viewport
	TierDistance float64
	Spacing      [3]float64
}

// Default base distances.
const (
	DefaultTierDistance  = 120.0
	DefaultHighSpacing   = 160.0
	DefaultLowSpacing    = 80.0
	DefaultRecordSpacing = 40.0
)

// DefaultOptions returns stacked options with the default distances and no
// viewport scaling.
func DefaultOptions() Options {
	return Options{
		Orientation:  Stacked,
		TierDistance: DefaultTierDistance,
		Spacing:      [3]float64{DefaultHighSpacing, DefaultLowSpacing, DefaultRecordSpacing},
	}
}

// Positions maps node ids to their laid-out centers.
type Positions map[forest.NodeID]forest.Point

// =============================================================================
// Public API
// =============================================================================

// Compute lays out the whole forest. Roots are spread evenly along the
// layout axis centered at 0; each parent's children occupy a centered span
// around it; the perpendicular coordinate is the node's tier times the tier
// distance.
//
// Compute is pure: it reads only structure and node types, never the
// current positions, so the same shape and options always give the same
// result.
func Compute(f *forest.Forest, opts Options) Positions {
	roots := f.Roots()
	sp := Spacing(f, opts)
	td := TierDistance(opts)

	pos := make(Positions, f.NodeCount())
	mid := float64(len(roots)-1) / 2
	for i, r := range roots {
		n, _ := f.Node(r)
		axis := (float64(i) - mid) * sp[0]
		place(f, pos, r, axis, float64(n.Type.Tier())*td, n.Type.Tier(), sp, td, opts.Orientation)
	}
	return pos
}

// Subtree lays out only root and its descendants, anchored at root's
// current position, using the globally harmonized spacing.
func Subtree(f *forest.Forest, root forest.NodeID, opts Options) Positions {
	n, ok := f.Node(root)
	if !ok {
		return Positions{}
	}
	sp := Spacing(f, opts)
	td := TierDistance(opts)
	axis, perp := split(n.Position, opts.Orientation)

	pos := make(Positions)
	place(f, pos, root, axis, perp, n.Type.Tier(), sp, td, opts.Orientation)
	return pos
}

// Apply writes positions into the node table. Ids missing from f are
// ignored.
func Apply(f *forest.Forest, pos Positions) {
	for id, p := range pos {
		if n, ok := f.Node(id); ok {
			n.Position = p
		}
	}
}

// TierDistance returns the perpendicular distance between tiers, scaled up
// to a quarter of the viewport's perpendicular extent.
func TierDistance(opts Options) float64 {
	perp := opts.Viewport.Height
	if opts.Orientation == Columnar {
		perp = opts.Viewport.Width
	}
	return math.Max(opts.TierDistance, perp/4)
}

// Spacing returns the harmonized sibling spacing per tier.
//
// Harmonization runs bottom-up so sibling groups never overlap:
//
//	spacing[Record] = base[Record]
//	spacing[Low]    = max(base[Low], maxChildren(LowIntent) × spacing[Record])
//	spacing[High]   = max(rootBase, maxChildren(HighIntent) × spacing[Low])
//
// where rootBase = max(base[High], axisExtent / (roots+1)).
func Spacing(f *forest.Forest, opts Options) [3]float64 {
	var maxLow, maxHigh int
	for _, n := range f.Nodes() {
		c := f.ChildCount(n.ID)
		switch n.Type {
		case forest.HighIntent:
			maxHigh = max(maxHigh, c)
		case forest.LowIntent:
			maxLow = max(maxLow, c)
		case forest.Record:
		}
	}

	axis := opts.Viewport.Width
	if opts.Orientation == Columnar {
		axis = opts.Viewport.Height
	}
	rootBase := math.Max(opts.Spacing[0], axis/float64(len(f.Roots())+1))

	var sp [3]float64
	sp[2] = opts.Spacing[2]
	sp[1] = math.Max(opts.Spacing[1], float64(maxLow)*sp[2])
	sp[0] = math.Max(rootBase, float64(maxHigh)*sp[1])
	return sp
}

// =============================================================================
// Internal Implementation
// =============================================================================

func place(f *forest.Forest, pos Positions, id forest.NodeID, axis, perp float64, tier int, sp [3]float64, td float64, o Orientation) {
	pos[id] = join(axis, perp, o)

	kids := f.Children(id)
	if len(kids) == 0 {
		return
	}
	step := sp[min(tier+1, 2)]
	start := axis - float64(len(kids)-1)*step/2
	for i, c := range kids {
		cn, _ := f.Node(c)
		ct := cn.Type.Tier()
		place(f, pos, c, start+float64(i)*step, perp+float64(ct-tier)*td, ct, sp, td, o)
	}
}

func join(axis, perp float64, o Orientation) forest.Point {
	if o == Columnar {
		return forest.Point{X: perp, Y: axis}
	}
	return forest.Point{X: axis, Y: perp}
}

func split(p forest.Point, o Orientation) (axis, perp float64) {
	if o == Columnar {
		return p.Y, p.X
	}
	return p.X, p.Y
}

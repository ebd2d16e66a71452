// Package layout computes deterministic positions for an intent forest.
//
// # Overview
//
// The layout is tiered: HighIntents sit on tier 0, LowIntents on tier 1 and
// Records on tier 2. [Orientation] picks the tier direction:
//
//	Stacked   tiers top → bottom, siblings along X
//	Columnar  tiers left → right, siblings along Y
//
// Both orientations run the same algorithm with the axes swapped.
//
// # Algorithm
//
//  1. Spacing is harmonized bottom-up ([Spacing]) from the widest parent at
//     each tier, so sibling groups cannot overlap.
//  2. Roots are spread evenly along the layout axis, centered at 0.
//  3. Each parent's children, of any type, occupy a centered span of
//     (n-1) × spacing around the parent. Records attached directly to a
//     HighIntent take slots in that span, which keeps them clear of the
//     record groups of sibling LowIntents.
//  4. The perpendicular coordinate is tier × [TierDistance].
//
// The viewport scales the result: the tier distance grows to a quarter of
// the perpendicular extent, and root spacing grows to axisExtent/(roots+1).
//
// # Purity
//
// [Compute] reads only structure and node types and returns fresh
// [Positions]. Positions are final; there is no physics state. [Apply]
// writes them into a forest, and [Subtree] re-lays out one tree anchored at
// its root's current position after a reorganization.
package layout

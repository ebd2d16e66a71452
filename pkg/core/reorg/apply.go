package reorg

import (
	"fmt"
	"slices"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/errors"
)

// MergeSeparator joins target and source labels on merge.
const MergeSeparator = " + "

// Op is a chosen reorganization. Version is the forest version Source and
// Target were read from; 0 means the caller resolved them against the
// current forest.
type Op struct {
	Kind    Operation     `json:"operation"`
	Source  forest.NodeID `json:"source"`
	Target  forest.NodeID `json:"target"`
	Version uint64        `json:"version,omitempty"`
}

// Check validates op against f without mutating it. Both nodes must exist,
// differ, the target must not lie inside the source's subtree, and the
// operation must be in the decision table for their types.
func Check(f *forest.Forest, op Op) error {
	if !slices.Contains(Operations, op.Kind) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown operation %q", op.Kind)
	}
	src, ok := f.Node(op.Source)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "source node %d not found", op.Source)
	}
	dst, ok := f.Node(op.Target)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "target node %d not found", op.Target)
	}
	if op.Source == op.Target {
		return errors.New(errors.ErrCodeInvalidInput, "cannot %s a node onto itself", op.Kind)
	}
	if f.IsAncestor(op.Source, op.Target) {
		return errors.New(errors.ErrCodeInvalidInput, "cannot %s %q into its own subtree", op.Kind, src.Label)
	}
	if _, err := Allowed(src.Type, dst.Type); err != nil {
		return err
	}
	if !Permits(src.Type, dst.Type, op.Kind) {
		return errors.New(errors.ErrCodeUnsupportedMerge,
			"operation not allowed: %s of %s onto %s", op.Kind, src.Type, dst.Type)
	}
	return nil
}

// Apply performs op on a clone of f and returns the new forest. f is never
// mutated; on error the caller's state is untouched.
//
// After the structural change the tree containing the target is re-laid
// out with opts, anchored at its root, and the invariants are validated.
func Apply(f *forest.Forest, op Op, opts layout.Options) (*forest.Forest, error) {
	if err := Check(f, op); err != nil {
		return nil, err
	}

	next := f.Clone()
	var err error
	switch op.Kind {
	case Merge:
		err = merge(next, op.Source, op.Target)
	case Attach:
		err = next.Reparent(op.Source, op.Target)
	case DemoteAsChild:
		err = demoteAsChild(next, op.Source, op.Target)
	case DemoteAndMerge:
		err = demoteAndMerge(next, op.Source, op.Target)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s %d onto %d", op.Kind, op.Source, op.Target)
	}

	root := next.Root(op.Target)
	layout.Apply(next, layout.Subtree(next, root, opts))

	if err := next.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvariantViolation, err, "%s left the graph invalid", op.Kind)
	}
	return next, nil
}

func merge(f *forest.Forest, src, dst forest.NodeID) error {
	for _, c := range f.Children(src) {
		if err := f.Reparent(c, dst); err != nil {
			return err
		}
	}
	s, _ := f.Node(src)
	d, _ := f.Node(dst)
	d.Label = d.Label + MergeSeparator + s.Label
	f.RemoveNode(src)
	return nil
}

// demoteAsChild retypes src to a LowIntent, lifts its records directly under
// it, drops the intermediate LowIntents and attaches src under dst.
func demoteAsChild(f *forest.Forest, src, dst forest.NodeID) error {
	records := f.DescendantsOfType(src, forest.Record)
	lows := f.DescendantsOfType(src, forest.LowIntent)

	f.Retype(src, forest.LowIntent)
	for _, r := range records {
		if err := f.Reparent(r, src); err != nil {
			return err
		}
	}
	for _, l := range lows {
		f.RemoveNode(l)
	}
	return f.Reparent(src, dst)
}

// demoteAndMerge retypes src to a LowIntent, moves every record under it to
// dst and deletes src with its intermediate LowIntents.
func demoteAndMerge(f *forest.Forest, src, dst forest.NodeID) error {
	records := f.DescendantsOfType(src, forest.Record)

	f.Retype(src, forest.LowIntent)
	for _, r := range records {
		if err := f.Reparent(r, dst); err != nil {
			return err
		}
	}
	f.RemoveSubtree(src)
	return nil
}

// Describe returns a sentence suitable for a confirmation dialog.
func Describe(op Op, f *forest.Forest) string {
	src := labelOf(f, op.Source)
	dst := labelOf(f, op.Target)
	switch op.Kind {
	case Merge:
		return fmt.Sprintf("Merge %q into %q as %q", src, dst, dst+MergeSeparator+src)
	case Attach:
		return fmt.Sprintf("Attach %q under %q", src, dst)
	case DemoteAsChild:
		return fmt.Sprintf("Demote %q to a sub-intent of %q", src, dst)
	case DemoteAndMerge:
		return fmt.Sprintf("Dissolve %q and move its records into %q", src, dst)
	}
	return fmt.Sprintf("%s %q onto %q", op.Kind, src, dst)
}

func labelOf(f *forest.Forest, id forest.NodeID) string {
	if n, ok := f.Node(id); ok {
		return n.Label
	}
	return fmt.Sprintf("#%d", id)
}

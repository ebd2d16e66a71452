package session

import (
	"context"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/core/reorg"
	"github.com/matzehuels/intentgraph/pkg/errors"
)

// Apply performs a reorganization and persists the result. Structural
// errors (unsupported pair, unknown node, cycle) leave the published forest
// untouched; a failed save rolls it back. The new forest is returned.
//
// An op with a non-zero Version is rejected with STALE_VERSION unless it
// matches the published version, since any publish may have renumbered the
// ids it names.
func (s *Session) Apply(ctx context.Context, op reorg.Op) (*forest.Forest, error) {
	return s.mutate(ctx, string(op.Kind), func(f *forest.Forest) (*forest.Forest, error) {
		if v := s.Version(); op.Version != 0 && op.Version != v {
			return nil, errors.New(errors.ErrCodeStaleVersion,
				"operation was chosen on version %d, graph is at version %d", op.Version, v)
		}
		next, err := reorg.Apply(f, op, s.layout)
		if err != nil {
			return nil, err
		}
		s.logger.Info("applied reorganization", "op", op.Kind, "source", op.Source, "target", op.Target)
		return next, nil
	})
}

// AddIntent creates a confirmed intent labeled label. With parent 0 it is a
// new HighIntent root; under a HighIntent it is a LowIntent. LowIntents and
// records cannot take intent children.
func (s *Session) AddIntent(ctx context.Context, label string, parent forest.NodeID) (forest.NodeID, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return 0, err
	}
	var id forest.NodeID
	_, err := s.mutate(ctx, "add-intent", func(f *forest.Forest) (*forest.Forest, error) {
		next := f.Clone()
		typ := forest.HighIntent
		if parent != 0 {
			pt, ok := next.TypeOf(parent)
			if !ok {
				return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", parent)
			}
			if pt != forest.HighIntent {
				return nil, errors.New(errors.ErrCodeInvalidInput, "cannot add an intent under a %s", pt)
			}
			typ = forest.LowIntent
		}
		n := next.AddNode(forest.Node{Type: typ, Label: label, Confirmed: true})
		if parent != 0 {
			if _, err := next.AddEdge(parent, n.ID); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvariantViolation, err, "attach new intent")
			}
		}
		id = n.ID
		return s.relayout(next, n.ID)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteNode removes a node and its whole subtree.
func (s *Session) DeleteNode(ctx context.Context, id forest.NodeID) error {
	_, err := s.mutate(ctx, "delete", func(f *forest.Forest) (*forest.Forest, error) {
		if _, ok := f.Node(id); !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", id)
		}
		next := f.Clone()
		next.RemoveSubtree(id)
		layout.Apply(next, layout.Compute(next, s.layout))
		return next, validated(next)
	})
	return err
}

// Rename relabels a node. Renaming a record also rewrites its content.
func (s *Session) Rename(ctx context.Context, id forest.NodeID, label string) error {
	if err := errors.ValidateLabel(label); err != nil {
		return err
	}
	_, err := s.mutate(ctx, "rename", func(f *forest.Forest) (*forest.Forest, error) {
		next := f.Clone()
		n, ok := next.Node(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", id)
		}
		n.Label = label
		if n.Record != nil {
			n.Record.Content = label
		}
		return next, nil
	})
	return err
}

// SetConfirmed marks a node as confirmed or not.
func (s *Session) SetConfirmed(ctx context.Context, id forest.NodeID, confirmed bool) error {
	_, err := s.mutate(ctx, "confirm", func(f *forest.Forest) (*forest.Forest, error) {
		next := f.Clone()
		n, ok := next.Node(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", id)
		}
		n.Confirmed = confirmed
		return next, nil
	})
	return err
}

// relayout positions the tree containing id and validates the forest.
func (s *Session) relayout(f *forest.Forest, id forest.NodeID) (*forest.Forest, error) {
	root := f.Root(id)
	if len(f.Roots()) == 1 || root == id {
		layout.Apply(f, layout.Compute(f, s.layout))
	} else {
		layout.Apply(f, layout.Subtree(f, root, s.layout))
	}
	return f, validated(f)
}

func validated(f *forest.Forest) error {
	if err := f.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvariantViolation, err, "forest invariants")
	}
	return nil
}

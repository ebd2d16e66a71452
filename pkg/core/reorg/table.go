package reorg

import (
	"fmt"
	"slices"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/errors"
)

// Operation names a reorganization.
type Operation string

const (
	// Merge moves the source's children under the target and deletes the
	// source. The target is relabeled "target + source".
	Merge Operation = "merge"
	// DemoteAsChild turns a HighIntent into a LowIntent under the target,
	// flattening its records beneath it.
	DemoteAsChild Operation = "demote-as-child"
	// Attach re-parents the source under the target, subtree intact.
	Attach Operation = "attach"
	// DemoteAndMerge dissolves a HighIntent into a LowIntent target: its
	// records move under the target and the source is deleted.
	DemoteAndMerge Operation = "demote-and-merge"
)

// Operations lists every operation.
var Operations = []Operation{Merge, DemoteAsChild, Attach, DemoteAndMerge}

// ParseOperation parses an operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if slices.Contains(Operations, op) {
		return op, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown operation %q", s)
}

type pair struct {
	src, dst forest.NodeType
}

// table is the single source of truth for which operations a dragged
// source may perform on a drop target.
var table = map[pair][]Operation{
	{forest.HighIntent, forest.HighIntent}: {Merge, DemoteAsChild},
	{forest.LowIntent, forest.LowIntent}:   {Merge},
	{forest.LowIntent, forest.HighIntent}:  {Attach},
	{forest.HighIntent, forest.LowIntent}:  {DemoteAndMerge},
	{forest.Record, forest.LowIntent}:      {Attach},
	{forest.Record, forest.HighIntent}:     {Attach},
}

// Allowed returns the operations permitted when a src-typed node is dropped
// on a dst-typed node. Pairs outside the table return an
// UNSUPPORTED_MERGE_OPERATION error naming both types.
func Allowed(src, dst forest.NodeType) ([]Operation, error) {
	ops, ok := table[pair{src, dst}]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupportedMerge,
			"operation not allowed: cannot drop %s onto %s", src, dst)
	}
	return slices.Clone(ops), nil
}

// Permits reports whether op is allowed for the type pair.
func Permits(src, dst forest.NodeType, op Operation) bool {
	return slices.Contains(table[pair{src, dst}], op)
}

// Pending is a drop awaiting the user's choice of operation.
type Pending struct {
	Source     forest.NodeID
	Target     forest.NodeID
	SourceType forest.NodeType
	TargetType forest.NodeType
	// Allowed is empty when the pair is outside the table; Reason then
	// explains why.
	Allowed []Operation
	Reason  string
	// Version is the forest version the drop was computed on. [Pending.Op]
	// carries it into the Op.
	Version uint64
}

// NewPending describes dropping src on dst in f.
func NewPending(f *forest.Forest, src, dst forest.NodeID) (*Pending, error) {
	sn, ok := f.Node(src)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", src)
	}
	dn, ok := f.Node(dst)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", dst)
	}
	p := &Pending{Source: src, Target: dst, SourceType: sn.Type, TargetType: dn.Type}
	ops, err := Allowed(sn.Type, dn.Type)
	if err != nil {
		p.Reason = errors.UserMessage(err)
		return p, nil
	}
	p.Allowed = ops
	return p, nil
}

// Possible reports whether at least one operation is allowed.
func (p *Pending) Possible() bool { return len(p.Allowed) > 0 }

// Op returns the operation kind as an Op, or an UNSUPPORTED_MERGE_OPERATION
// error when kind is not among the allowed operations.
func (p *Pending) Op(kind Operation) (Op, error) {
	if !slices.Contains(p.Allowed, kind) {
		return Op{}, errors.New(errors.ErrCodeUnsupportedMerge,
			"operation not allowed: %s of %s onto %s", kind, p.SourceType, p.TargetType)
	}
	return Op{Kind: kind, Source: p.Source, Target: p.Target, Version: p.Version}, nil
}

// String implements fmt.Stringer.
func (p *Pending) String() string {
	if !p.Possible() {
		return fmt.Sprintf("%d → %d: %s", p.Source, p.Target, p.Reason)
	}
	return fmt.Sprintf("%d → %d: %v", p.Source, p.Target, p.Allowed)
}

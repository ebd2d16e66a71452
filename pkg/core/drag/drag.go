package drag

import (
	"fmt"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/reorg"
	"github.com/matzehuels/intentgraph/pkg/errors"
)

// State is the drag lifecycle state.
type State int

const (
	// Idle: no drag in progress.
	Idle State = iota
	// Dragging: a subtree follows the pointer.
	Dragging
	// CandidateFound: the drag ended over a drop target.
	CandidateFound
	// NoCandidate: the drag ended without a target or below the minimum
	// displacement.
	NoCandidate
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case CandidateFound:
		return "candidate-found"
	case NoCandidate:
		return "no-candidate"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Options tunes collision detection.
type Options struct {
	// DragOpacity is applied to every dragged node.
	DragOpacity float64
	// Buffer is added to the sum of radii when testing for a collision.
	Buffer float64
	// MinDisplacement is the distance below which a drop is ignored.
	MinDisplacement float64
}

// DefaultOptions returns the standard drag tuning.
func DefaultOptions() Options {
	return Options{DragOpacity: 0.2, Buffer: 15, MinDisplacement: 30}
}

type saved struct {
	position    forest.Point
	opacity     float64
	highlighted bool
}

// Session tracks one drag over a forest. The forest is mutated while the
// drag is live (positions, opacity, highlight) and restored exactly by
// [Session.End] and [Session.Cancel]. Callers drag a working copy, never a
// published forest.
//
// A Session is not safe for concurrent use.
type Session struct {
	f    *forest.Forest
	opts Options

	state     State
	outcome   State
	node      forest.NodeID
	subtree   []forest.NodeID
	inSubtree map[forest.NodeID]bool
	saved     map[forest.NodeID]saved
	start     forest.Point
	candidate forest.NodeID
}

// New returns an idle session over f.
func New(f *forest.Forest, opts Options) *Session {
	return &Session{f: f, opts: opts, state: Idle}
}

// Begin starts dragging nodeID in f and returns the live session.
func Begin(f *forest.Forest, nodeID forest.NodeID, opts Options) (*Session, error) {
	s := New(f, opts)
	if err := s.Begin(nodeID); err != nil {
		return nil, err
	}
	return s, nil
}

// Begin starts a drag of nodeID. The affected subtree is the node alone for
// a Record, or the intent plus every transitive descendant. Pre-drag
// position, opacity and highlight are recorded for each affected node, and
// each is dimmed to the drag opacity.
//
// Begin returns NOT_FOUND for an unknown node and DRAG_IN_PROGRESS if the
// session is not idle.
func (s *Session) Begin(nodeID forest.NodeID) error {
	if s.state != Idle {
		return errors.New(errors.ErrCodeDragInProgress, "drag of node %d already in progress", s.node)
	}
	n, ok := s.f.Node(nodeID)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %d not found", nodeID)
	}

	sub := []forest.NodeID{nodeID}
	if n.Type != forest.Record {
		sub = s.f.Subtree(nodeID)
	}

	s.node = nodeID
	s.subtree = sub
	s.inSubtree = make(map[forest.NodeID]bool, len(sub))
	s.saved = make(map[forest.NodeID]saved, len(sub))
	for _, id := range sub {
		m, _ := s.f.Node(id)
		s.inSubtree[id] = true
		s.saved[id] = saved{m.Position, m.Opacity, m.Highlighted}
		m.Opacity = s.opts.DragOpacity
	}
	s.start = n.Position
	s.candidate = 0
	s.state = Dragging
	s.outcome = Idle
	return nil
}

// Update moves the dragged subtree so the dragged node sits at pointer and
// returns the current drop candidate.
//
// Candidates are intents outside the subtree whose distance to the dragged
// node is within the sum of both radii plus the buffer. The nearest wins; a
// tie goes to the first in node insertion order. The Highlighted flag
// follows the candidate.
func (s *Session) Update(pointer forest.Point) (forest.NodeID, bool) {
	if s.state != Dragging {
		return 0, false
	}
	dragged, _ := s.f.Node(s.node)
	delta := pointer.Sub(dragged.Position)
	for _, id := range s.subtree {
		m, _ := s.f.Node(id)
		m.Position = m.Position.Add(delta)
	}

	next := s.nearest(dragged)
	if next != s.candidate {
		s.setHighlight(s.candidate, false)
		s.setHighlight(next, true)
		s.candidate = next
	}
	return s.candidate, s.candidate != 0
}

func (s *Session) nearest(dragged *forest.Node) forest.NodeID {
	var (
		best     forest.NodeID
		bestDist float64
	)
	for _, c := range s.f.Nodes() {
		if s.inSubtree[c.ID] || !c.Type.IsIntent() {
			continue
		}
		d := dragged.Position.DistanceTo(c.Position)
		if d > dragged.Radius()+c.Radius()+s.opts.Buffer {
			continue
		}
		if best == 0 || d < bestDist {
			best, bestDist = c.ID, d
		}
	}
	return best
}

func (s *Session) setHighlight(id forest.NodeID, on bool) {
	if id == 0 {
		return
	}
	n, ok := s.f.Node(id)
	if !ok {
		return
	}
	if _, seen := s.saved[id]; !seen {
		s.saved[id] = saved{n.Position, n.Opacity, n.Highlighted}
	}
	if on {
		n.Highlighted = true
		return
	}
	n.Highlighted = s.saved[id].highlighted
}

// End finishes the drag. Every recorded position, opacity and highlight is
// restored exactly and the session returns to Idle.
//
// When the drop moved at least the minimum displacement onto a candidate,
// End returns a [reorg.Pending] listing the operations allowed for the pair.
// A pair outside the decision table still yields a Pending, with an empty
// Allowed list and the rejection reason. Otherwise End returns nil.
func (s *Session) End() *reorg.Pending {
	if s.state != Dragging {
		return nil
	}
	dragged, _ := s.f.Node(s.node)
	moved := dragged.Position.DistanceTo(s.start)
	candidate := s.candidate

	s.restore()

	if candidate == 0 || moved < s.opts.MinDisplacement {
		s.outcome = NoCandidate
		return nil
	}
	p, err := reorg.NewPending(s.f, s.node, candidate)
	if err != nil {
		s.outcome = NoCandidate
		return nil
	}
	s.outcome = CandidateFound
	return p
}

// Cancel aborts the drag and restores the forest.
func (s *Session) Cancel() {
	if s.state != Dragging {
		return
	}
	s.restore()
	s.outcome = NoCandidate
}

func (s *Session) restore() {
	for id, sv := range s.saved {
		if n, ok := s.f.Node(id); ok {
			n.Position = sv.position
			n.Opacity = sv.opacity
			n.Highlighted = sv.highlighted
		}
	}
	s.saved = nil
	s.inSubtree = nil
	s.subtree = nil
	s.candidate = 0
	s.state = Idle
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Outcome returns CandidateFound or NoCandidate for the last finished drag,
// or Idle if none has finished.
func (s *Session) Outcome() State { return s.outcome }

// Node returns the dragged node id.
func (s *Session) Node() forest.NodeID { return s.node }

// Subtree returns the ids moving with the drag.
func (s *Session) Subtree() []forest.NodeID { return append([]forest.NodeID(nil), s.subtree...) }

// Candidate returns the current drop candidate.
func (s *Session) Candidate() (forest.NodeID, bool) { return s.candidate, s.candidate != 0 }

// Forest returns the forest being dragged over.
func (s *Session) Forest() *forest.Forest { return s.f }

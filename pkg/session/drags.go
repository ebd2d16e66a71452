package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/matzehuels/intentgraph/pkg/core/drag"
	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/reorg"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/observability"
)

type activeDrag struct {
	session *drag.Session
	version uint64
}

// DragState is a snapshot of a live drag.
type DragState struct {
	ID        string
	Node      forest.NodeID
	Subtree   []forest.NodeID
	Candidate forest.NodeID // 0 when there is none
	// Version is the forest version the drag started from.
	Version uint64
}

// BeginDrag starts dragging nodeID on a private copy of the published
// forest and returns the drag id. When MaxDrags drags are already live, the
// one moved least recently is dropped.
func (s *Session) BeginDrag(nodeID forest.NodeID) (DragState, error) {
	f, v := s.Graph()
	ds, err := drag.Begin(f, nodeID, s.dragOpts)
	if err != nil {
		return DragState{}, err
	}
	id := uuid.NewString()

	s.dragMu.Lock()
	evicted := s.drags.Add(id, &activeDrag{session: ds, version: v})
	s.dragMu.Unlock()
	if evicted {
		s.logger.Warn("too many live drags, dropped the least recently moved one", "max", s.drags.Len())
	}

	s.logger.Debug("drag started", "drag", id, "node", nodeID, "subtree", len(ds.Subtree()))
	return DragState{ID: id, Node: nodeID, Subtree: ds.Subtree(), Version: v}, nil
}

// UpdateDrag moves a live drag to pointer and returns the current candidate.
func (s *Session) UpdateDrag(id string, pointer forest.Point) (DragState, error) {
	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	d, ok := s.drags.Get(id)
	if !ok {
		return DragState{}, errors.New(errors.ErrCodeNotFound, "drag %q not found", id)
	}
	c, _ := d.session.Update(pointer)
	return DragState{ID: id, Node: d.session.Node(), Subtree: d.session.Subtree(), Candidate: c, Version: d.version}, nil
}

// EndDrag finishes a drag. It returns the pending drop, or nil when the drag
// ended without a candidate. Nothing is applied: pass the chosen
// [reorg.Pending.Op] to [Session.Apply].
func (s *Session) EndDrag(ctx context.Context, id string) (*reorg.Pending, error) {
	d, err := s.takeDrag(id)
	if err != nil {
		return nil, err
	}
	p := d.session.End()
	if p != nil {
		p.Version = d.version
	}
	observability.Engine().OnDragEnd(ctx, d.session.Outcome().String())
	s.logger.Debug("drag ended", "drag", id, "outcome", d.session.Outcome())
	return p, nil
}

// CancelDrag aborts a drag.
func (s *Session) CancelDrag(ctx context.Context, id string) error {
	d, err := s.takeDrag(id)
	if err != nil {
		return err
	}
	d.session.Cancel()
	observability.Engine().OnDragEnd(ctx, "cancelled")
	return nil
}

// Drags returns the number of live drags.
func (s *Session) Drags() int {
	return s.drags.Len()
}

func (s *Session) takeDrag(id string) (*activeDrag, error) {
	s.dragMu.Lock()
	defer s.dragMu.Unlock()
	d, ok := s.drags.Peek(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "drag %q not found", id)
	}
	s.drags.Remove(id)
	return d, nil
}

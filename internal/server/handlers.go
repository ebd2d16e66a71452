package server

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/core/reorg"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/graph"
	"github.com/matzehuels/intentgraph/pkg/session"
)

// Handler serves the session API.
type Handler struct {
	s      *session.Session
	logger *log.Logger
}

// NewHandler creates a Handler for s.
func NewHandler(s *session.Session, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{s: s, logger: logger}
}

// =============================================================================
// Reading
// =============================================================================

// GetGraph handles GET /graph.
func (h *Handler) GetGraph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot())
}

// GetLayout handles GET /layout?orientation=&width=&height=. Missing
// parameters fall back to the session's layout options.
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	opts := h.s.LayoutOptions()
	q := r.URL.Query()
	if v := q.Get("orientation"); v != "" {
		o, err := layout.ParseOrientation(v)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "orientation must be stacked or columnar"))
			return
		}
		opts.Orientation = o
	}
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"width", &opts.Viewport.Width}, {"height", &opts.Viewport.Height}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative number", p.name))
			return
		}
		*p.dst = f
	}
	pos := h.s.Layout(r.Context(), opts.Orientation, opts.Viewport)
	writeJSON(w, http.StatusOK, graph.FromPositions(pos, opts))
}

// GetTree handles GET /tree.
func (h *Handler) GetTree(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.s.Tree())
}

// =============================================================================
// Drags
// =============================================================================

type beginDragRequest struct {
	Node int `json:"node"`
}

type moveDragRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type dragResponse struct {
	ID        string `json:"id"`
	Node      int    `json:"node"`
	Subtree   []int  `json:"subtree"`
	Candidate int    `json:"candidate,omitempty"`
	Version   uint64 `json:"version"`
}

func dragResponseFrom(d session.DragState) dragResponse {
	out := dragResponse{
		ID:        d.ID,
		Node:      int(d.Node),
		Subtree:   make([]int, len(d.Subtree)),
		Candidate: int(d.Candidate),
		Version:   d.Version,
	}
	for i, id := range d.Subtree {
		out.Subtree[i] = int(id)
	}
	return out
}

type pendingResponse struct {
	Source     int               `json:"source"`
	Target     int               `json:"target"`
	SourceType forest.NodeType   `json:"sourceType"`
	TargetType forest.NodeType   `json:"targetType"`
	Allowed    []reorg.Operation `json:"allowed"`
	Reason     string            `json:"reason,omitempty"`
	Version    uint64            `json:"version"`
}

type endDragResponse struct {
	Pending *pendingResponse `json:"pending"`
}

// BeginDrag handles POST /drags.
func (h *Handler) BeginDrag(w http.ResponseWriter, r *http.Request) {
	var req beginDragRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := h.s.BeginDrag(forest.NodeID(req.Node))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dragResponseFrom(d))
}

// MoveDrag handles POST /drags/{id}/move.
func (h *Handler) MoveDrag(w http.ResponseWriter, r *http.Request) {
	var req moveDragRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := h.s.UpdateDrag(chi.URLParam(r, "id"), forest.Point{X: req.X, Y: req.Y})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dragResponseFrom(d))
}

// EndDrag handles POST /drags/{id}/end. The response names the operations
// the client may choose from; nothing is applied.
func (h *Handler) EndDrag(w http.ResponseWriter, r *http.Request) {
	p, err := h.s.EndDrag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var resp endDragResponse
	if p != nil {
		resp.Pending = &pendingResponse{
			Source:     int(p.Source),
			Target:     int(p.Target),
			SourceType: p.SourceType,
			TargetType: p.TargetType,
			Allowed:    p.Allowed,
			Reason:     p.Reason,
			Version:    p.Version,
		}
		if resp.Pending.Allowed == nil {
			resp.Pending.Allowed = []reorg.Operation{}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CancelDrag handles DELETE /drags/{id}.
func (h *Handler) CancelDrag(w http.ResponseWriter, r *http.Request) {
	if err := h.s.CancelDrag(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Mutations
// =============================================================================

type intentRequest struct {
	Label  string `json:"label"`
	Parent int    `json:"parent"`
}

// ApplyOperation handles POST /operations with a body such as
// {"operation":"merge","source":4,"target":1,"version":3}. The version is
// the one the ids were read at, from GET /graph or the end of a drag; a
// stale version is answered with 409.
func (h *Handler) ApplyOperation(w http.ResponseWriter, r *http.Request) {
	var op reorg.Op
	if err := decode(w, r, &op); err != nil {
		writeError(w, err)
		return
	}
	if op.Version == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "version is required"))
		return
	}
	if _, err := h.s.Apply(r.Context(), op); err != nil {
		h.logger.Warn("operation rejected", "op", op.Kind, "source", op.Source, "target", op.Target, "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot())
}

// AddIntent handles POST /intents.
func (h *Handler) AddIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	id, err := h.s.AddIntent(r.Context(), req.Label, forest.NodeID(req.Parent))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"id": int(id)})
}

// DeleteNode handles DELETE /nodes/{id}.
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "node id must be an integer"))
		return
	}
	if err := h.s.DeleteNode(r.Context(), forest.NodeID(id)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type patchNodeRequest struct {
	Label     *string `json:"label,omitempty"`
	Confirmed *bool   `json:"confirmed,omitempty"`
}

// PatchNode handles PATCH /nodes/{id}. Either field may be omitted; each one
// present is applied as its own edit.
func (h *Handler) PatchNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "node id must be an integer"))
		return
	}
	var req patchNodeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Label == nil && req.Confirmed == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "label or confirmed is required"))
		return
	}
	if req.Label != nil {
		if err := h.s.Rename(r.Context(), forest.NodeID(id), *req.Label); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Confirmed != nil {
		if err := h.s.SetConfirmed(r.Context(), forest.NodeID(id), *req.Confirmed); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.snapshot())
}

// Reextract handles POST /reextract.
func (h *Handler) Reextract(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Reextract(r.Context()); err != nil {
		h.logger.Error("re-extraction failed", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.snapshot())
}

func (h *Handler) snapshot() graph.Graph {
	f, v := h.s.Graph()
	g := graph.FromForest(f)
	g.Version = v
	return g
}

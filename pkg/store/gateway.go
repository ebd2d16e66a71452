package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/observability"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// Key suffixes under a gateway namespace.
const (
	TreeKey    = "intent-tree"
	RecordsKey = "records"
)

// Gateway persists the tree model and the raw records of one namespace
// (typically one user) on top of a [Store].
type Gateway struct {
	Store     Store
	Namespace string
	// Backend labels hook events; it does not affect behavior.
	Backend string
}

// NewGateway creates a gateway over s.
func NewGateway(s Store, namespace, backend string) *Gateway {
	return &Gateway{Store: s, Namespace: namespace, Backend: backend}
}

// Key returns the storage key for kind in the gateway namespace.
func (g *Gateway) Key(kind string) string {
	return g.Namespace + ":" + kind
}

// LoadTree reads and decodes the stored tree. A missing tree is NOT_FOUND,
// an undecodable one INVALID_TREE_STRUCTURE and a backend failure
// PERSISTENCE_FAILURE.
func (g *Gateway) LoadTree(ctx context.Context) (*tree.Tree, error) {
	data, ok, err := g.load(ctx, TreeKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no tree stored for %q", g.Namespace)
	}
	return tree.Parse(data)
}

// SaveTree encodes and stores t.
func (g *Gateway) SaveTree(ctx context.Context, t *tree.Tree) error {
	data, err := tree.Marshal(t)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode tree")
	}
	return g.save(ctx, TreeKey, data)
}

// LoadRecords reads the raw records. Missing records are an empty list.
func (g *Gateway) LoadRecords(ctx context.Context) ([]tree.Entry, error) {
	data, ok, err := g.load(ctx, RecordsKey)
	if err != nil || !ok {
		return nil, err
	}
	var recs []tree.Entry
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode records")
	}
	return recs, nil
}

// SaveRecords stores the raw records.
func (g *Gateway) SaveRecords(ctx context.Context, recs []tree.Entry) error {
	if recs == nil {
		recs = []tree.Entry{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode records")
	}
	return g.save(ctx, RecordsKey, data)
}

// Close closes the underlying store.
func (g *Gateway) Close() error {
	return g.Store.Close()
}

func (g *Gateway) load(ctx context.Context, kind string) ([]byte, bool, error) {
	start := time.Now()
	data, ok, err := g.Store.Get(ctx, g.Key(kind))
	observability.Store().OnLoad(ctx, g.Backend, kind, ok, time.Since(start), err)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodePersistence, err, "load %s", kind)
	}
	return data, ok, nil
}

func (g *Gateway) save(ctx context.Context, kind string, data []byte) error {
	start := time.Now()
	err := g.Store.Set(ctx, g.Key(kind), data)
	observability.Store().OnSave(ctx, g.Backend, kind, len(data), time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "save %s", kind)
	}
	return nil
}

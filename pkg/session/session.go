package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/intentgraph/pkg/core/drag"
	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/extract"
	pkgio "github.com/matzehuels/intentgraph/pkg/io"
	"github.com/matzehuels/intentgraph/pkg/observability"
	"github.com/matzehuels/intentgraph/pkg/store"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// DefaultLayoutCacheSize is the number of layouts kept per session.
const DefaultLayoutCacheSize = 64

// DefaultMaxDrags is the number of live drags kept per session. Starting one
// more evicts the drag that was moved least recently.
const DefaultMaxDrags = 32

// Options configures a [Session].
type Options struct {
	// Gateway persists the tree. Nil uses an in-memory store.
	Gateway *store.Gateway
	// Extractor regenerates the tree from raw records. Nil disables Reextract.
	Extractor extract.Extractor
	Layout    layout.Options
	Drag      drag.Options
	// Logger defaults to log.Default().
	Logger *log.Logger
	// LayoutCacheSize defaults to DefaultLayoutCacheSize.
	LayoutCacheSize int
	// MaxDrags defaults to DefaultMaxDrags.
	MaxDrags int
}

// Session is the editing session over one intent forest.
//
// The published forest is immutable: readers get clones and every change
// builds a new forest that replaces it. Structural changes are serialized by
// a single mutable-graph lock held from the moment an operation is chosen
// until its save has settled. While the save is outstanding the new state
// is already visible (optimistic publish); a failed save restores the exact
// previous forest.
//
// Drags run on private working copies and never take the lock, so a drag can
// proceed while a save is in flight.
//
// A Session is safe for concurrent use.
type Session struct {
	gw        *store.Gateway
	extractor extract.Extractor
	layout    layout.Options
	dragOpts  drag.Options
	logger    *log.Logger

	lock *semaphore.Weighted

	mu      sync.RWMutex
	current *forest.Forest
	version uint64

	layouts *lru.Cache[layoutKey, layout.Positions]

	// dragMu serializes access to each drag's working copy.
	dragMu sync.Mutex
	drags  *lru.Cache[string, *activeDrag]
}

// New creates a session holding an empty forest. Call [Session.Load] to read
// the stored tree.
func New(opts Options) *Session {
	if opts.Gateway == nil {
		opts.Gateway = store.NewGateway(store.NewMemoryStore(), "default", "memory")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.LayoutCacheSize <= 0 {
		opts.LayoutCacheSize = DefaultLayoutCacheSize
	}
	if opts.MaxDrags <= 0 {
		opts.MaxDrags = DefaultMaxDrags
	}
	if opts.Layout.Spacing == ([3]float64{}) {
		opts.Layout = layout.DefaultOptions()
	}
	if opts.Drag == (drag.Options{}) {
		opts.Drag = drag.DefaultOptions()
	}
	cache, _ := lru.New[layoutKey, layout.Positions](opts.LayoutCacheSize)
	drags, _ := lru.New[string, *activeDrag](opts.MaxDrags)
	return &Session{
		gw:        opts.Gateway,
		extractor: opts.Extractor,
		layout:    opts.Layout,
		dragOpts:  opts.Drag,
		logger:    opts.Logger,
		lock:      semaphore.NewWeighted(1),
		current:   forest.New(""),
		layouts:   cache,
		drags:     drags,
	}
}

// =============================================================================
// Reading
// =============================================================================

// Graph returns a clone of the published forest and its version.
func (s *Session) Graph() (*forest.Forest, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone(), s.version
}

// Version returns the version of the published forest. It increases on
// every publish, including rollbacks.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Tree returns the published forest serialized back into a tree.
func (s *Session) Tree() *tree.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pkgio.Serialize(s.current)
}

type layoutKey struct {
	version uint64
	opts    layout.Options
}

// Layout computes positions of the published forest for an orientation and
// viewport. Results are cached per forest version.
func (s *Session) Layout(ctx context.Context, o layout.Orientation, vp layout.Viewport) layout.Positions {
	opts := s.layout
	opts.Orientation = o
	opts.Viewport = vp

	s.mu.RLock()
	f, v := s.current, s.version
	s.mu.RUnlock()

	key := layoutKey{version: v, opts: opts}
	if pos, ok := s.layouts.Get(key); ok {
		return pos
	}
	start := time.Now()
	pos := layout.Compute(f, opts)
	observability.Engine().OnLayout(ctx, o.String(), f.NodeCount(), time.Since(start))
	s.layouts.Add(key, pos)
	return pos
}

// LayoutOptions returns the session's base layout options.
func (s *Session) LayoutOptions() layout.Options { return s.layout }

// =============================================================================
// Loading
// =============================================================================

// Load reads the stored tree and rebuilds the forest from it. Labels
// confirmed in the current forest stay confirmed.
func (s *Session) Load(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.lock.Release(1)

	t, err := s.gw.LoadTree(ctx)
	if err != nil {
		return err
	}
	f, err := s.build(ctx, t)
	if err != nil {
		return err
	}
	s.publish(f)
	s.logger.Info("loaded intent tree", "scenario", f.Scenario, "nodes", f.NodeCount(), "version", s.Version())
	return nil
}

// Replace rebuilds the forest from t, publishes it and saves it. It is how
// an externally produced tree (an import or an extraction result) enters the
// session.
func (s *Session) Replace(ctx context.Context, t *tree.Tree) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.lock.Release(1)
	return s.replace(ctx, t)
}

func (s *Session) replace(ctx context.Context, t *tree.Tree) error {
	f, err := s.build(ctx, t)
	if err != nil {
		return err
	}
	return s.commit(ctx, f)
}

func (s *Session) build(ctx context.Context, t *tree.Tree) (*forest.Forest, error) {
	s.mu.RLock()
	prior := s.current.ConfirmedLabels()
	s.mu.RUnlock()

	start := time.Now()
	f, err := pkgio.BuildGraph(t, prior)
	observability.Engine().OnBuild(ctx, nodeCount(f), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	layout.Apply(f, layout.Compute(f, s.layout))
	return f, nil
}

// Reextract sends the stored records and the current tree to the extraction
// service and replaces the forest with its answer. Confirmations carry over
// by label.
func (s *Session) Reextract(ctx context.Context) error {
	if s.extractor == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no extraction service configured")
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.lock.Release(1)

	recs, err := s.gw.LoadRecords(ctx)
	if err != nil {
		return err
	}
	prior := s.Tree()
	s.logger.Info("requesting extraction", "records", len(recs), "scenario", prior.Scenario)
	t, err := s.extractor.Extract(ctx, recs, prior.Scenario, prior)
	if err != nil {
		return err
	}
	if t.Scenario == "" {
		t.Scenario = prior.Scenario
	}
	return s.replace(ctx, t)
}

// ImportRecords stores raw records for the next [Session.Reextract].
func (s *Session) ImportRecords(ctx context.Context, recs []tree.Entry) error {
	return s.gw.SaveRecords(ctx, recs)
}

// =============================================================================
// Mutation
// =============================================================================

// acquire takes the mutable-graph lock, giving up when ctx ends.
func (s *Session) acquire(ctx context.Context) error {
	if err := s.lock.Acquire(ctx, 1); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "waiting for graph lock")
	}
	return nil
}

// mutate runs fn against the published forest under the lock and commits
// the result. fn must not modify its argument.
func (s *Session) mutate(ctx context.Context, name string, fn func(*forest.Forest) (*forest.Forest, error)) (*forest.Forest, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.lock.Release(1)

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	start := time.Now()
	next, err := fn(cur)
	if err == nil {
		err = s.commit(ctx, next)
	}
	observability.Engine().OnApply(ctx, name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

// commit publishes next and saves it. A failed save restores the forest that
// was published before and returns PERSISTENCE_FAILURE. The caller holds the
// lock.
func (s *Session) commit(ctx context.Context, next *forest.Forest) error {
	s.mu.RLock()
	prev := s.current
	s.mu.RUnlock()

	s.publish(next)
	if err := s.gw.SaveTree(ctx, pkgio.Serialize(next)); err != nil {
		s.publish(prev)
		observability.Store().OnRollback(ctx, s.gw.Backend)
		s.logger.Error("save failed, restored previous graph", "err", err, "version", s.Version())
		if errors.GetCode(err) != errors.ErrCodePersistence {
			err = errors.Wrap(errors.ErrCodePersistence, err, "save tree")
		}
		return err
	}
	return nil
}

func (s *Session) publish(f *forest.Forest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = f
	s.version++
}

func nodeCount(f *forest.Forest) int {
	if f == nil {
		return 0
	}
	return f.NodeCount()
}

// String implements fmt.Stringer for log output.
func (s *Session) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("session(%s, v%d, %d nodes)", s.gw.Namespace, s.version, s.current.NodeCount())
}

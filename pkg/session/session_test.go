package session

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/intentgraph/pkg/core/forest"
	"github.com/matzehuels/intentgraph/pkg/core/layout"
	"github.com/matzehuels/intentgraph/pkg/core/reorg"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/extract"
	"github.com/matzehuels/intentgraph/pkg/store"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

const travelTree = `{
  "scenario": "trip planning",
  "item": {
    "Travel": {
      "id": 1,
      "intent": "Travel",
      "immutable": true,
      "child": [
        {"intent": "Barcelona", "child": [{"content": "see Gaudí works", "isLeafNode": true}]}
      ]
    },
    "Spain tips": {"id": 2, "child": ["visit Toledo"]}
  }
}`

// flakyStore fails writes while fail is set.
type flakyStore struct {
	*store.MemoryStore
	fail atomic.Bool
}

func (s *flakyStore) Set(ctx context.Context, key string, data []byte) error {
	if s.fail.Load() {
		return stderrors.New("disk full")
	}
	return s.MemoryStore.Set(ctx, key, data)
}

func setup(t *testing.T) (*Session, *flakyStore) {
	t.Helper()
	ctx := context.Background()
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	gw := store.NewGateway(st, "test", "memory")
	tr, err := tree.Parse([]byte(travelTree))
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.SaveTree(ctx, tr); err != nil {
		t.Fatal(err)
	}
	s := New(Options{Gateway: gw})
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, st
}

func find(t *testing.T, f *forest.Forest, label string) *forest.Node {
	t.Helper()
	n, ok := f.FindByLabel(label)
	if !ok {
		t.Fatalf("no node labeled %q", label)
	}
	return n
}

func TestLoad(t *testing.T) {
	s, _ := setup(t)
	f, v := s.Graph()
	if f.NodeCount() != 5 || v != 1 {
		t.Errorf("Graph() = %d nodes, v%d, want 5, v1", f.NodeCount(), v)
	}
	if f.Scenario != "trip planning" {
		t.Errorf("Scenario = %q", f.Scenario)
	}
}

func TestLoadMissingTree(t *testing.T) {
	s := New(Options{})
	if err := s.Load(context.Background()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}
	if s.Version() != 0 {
		t.Errorf("Version() = %d, want 0", s.Version())
	}
}

func TestGraphIsACopy(t *testing.T) {
	s, _ := setup(t)
	f, _ := s.Graph()
	find(t, f, "Travel").Label = "mutated"
	g, _ := s.Graph()
	if _, ok := g.FindByLabel("Travel"); !ok {
		t.Error("mutating a Graph() copy changed the session")
	}
}

func TestApplyMergePersists(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	f, _ := s.Graph()
	op := reorg.Op{Kind: reorg.Merge, Source: find(t, f, "Spain tips").ID, Target: find(t, f, "Travel").ID}

	next, err := s.Apply(ctx, op)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := next.FindByLabel("Travel + Spain tips"); !ok {
		t.Error("merged label missing")
	}
	if s.Version() != 2 {
		t.Errorf("Version() = %d, want 2", s.Version())
	}

	stored, err := s.gw.LoadTree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stored.Get("Travel + Spain tips"); !ok || stored.Len() != 1 {
		t.Errorf("stored tree items = %v", stored.Names())
	}
}

func TestApplyRollbackOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	s, st := setup(t)
	before, v := s.Graph()
	op := reorg.Op{Kind: reorg.Merge, Source: find(t, before, "Spain tips").ID, Target: find(t, before, "Travel").ID}

	st.fail.Store(true)
	_, err := s.Apply(ctx, op)
	if !errors.Is(err, errors.ErrCodePersistence) {
		t.Fatalf("Apply() error = %v, want PERSISTENCE_FAILURE", err)
	}
	after, v2 := s.Graph()
	if !after.Equal(before) {
		t.Error("forest not restored after failed save")
	}
	if v2 != v+2 {
		t.Errorf("version = %d, want %d (publish + rollback)", v2, v+2)
	}
}

func TestApplyStructuralErrorPublishesNothing(t *testing.T) {
	s, _ := setup(t)
	f, v := s.Graph()
	op := reorg.Op{Kind: reorg.Merge, Source: find(t, f, "visit Toledo").ID, Target: find(t, f, "see Gaudí works").ID}

	if _, err := s.Apply(context.Background(), op); !errors.Is(err, errors.ErrCodeUnsupportedMerge) {
		t.Errorf("Apply() error = %v, want UNSUPPORTED_MERGE_OPERATION", err)
	}
	if s.Version() != v {
		t.Errorf("version moved from %d to %d", v, s.Version())
	}
}

func TestApplyWaitsForLock(t *testing.T) {
	s, _ := setup(t)
	if err := s.lock.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer s.lock.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	f, _ := s.Graph()
	_, err := s.Apply(ctx, reorg.Op{Kind: reorg.Attach, Source: find(t, f, "visit Toledo").ID, Target: find(t, f, "Travel").ID})
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Apply() error = %v, want deadline exceeded", err)
	}
}

func TestDragThenApply(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	f, _ := s.Graph()
	spain, travel := find(t, f, "Spain tips"), find(t, f, "Travel")

	d, err := s.BeginDrag(spain.ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if len(d.Subtree) != 2 {
		t.Errorf("Subtree = %v, want Spain tips and its record", d.Subtree)
	}
	st, err := s.UpdateDrag(d.ID, travel.Position)
	if err != nil || st.Candidate != travel.ID {
		t.Fatalf("UpdateDrag() = %+v, %v, want candidate %d", st, err, travel.ID)
	}

	// the published forest never sees drag state
	g, _ := s.Graph()
	if n := find(t, g, "Spain tips"); n.Opacity != 1 || n.Position != spain.Position {
		t.Errorf("published node changed during drag: %+v", n)
	}

	p, err := s.EndDrag(ctx, d.ID)
	if err != nil || p == nil || !p.Possible() {
		t.Fatalf("EndDrag() = %v, %v", p, err)
	}
	op, err := p.Op(reorg.Merge)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Apply(ctx, op); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Drags() != 0 {
		t.Errorf("Drags() = %d, want 0", s.Drags())
	}
}

func TestDragErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	if _, err := s.BeginDrag(999); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("BeginDrag(missing) error = %v", err)
	}
	if _, err := s.UpdateDrag("nope", forest.Point{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("UpdateDrag(unknown) error = %v", err)
	}
	if _, err := s.EndDrag(ctx, "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("EndDrag(unknown) error = %v", err)
	}

	f, _ := s.Graph()
	d, _ := s.BeginDrag(find(t, f, "Travel").ID)
	if err := s.CancelDrag(ctx, d.ID); err != nil {
		t.Errorf("CancelDrag: %v", err)
	}
	if err := s.CancelDrag(ctx, d.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second CancelDrag error = %v", err)
	}
}

func TestLayoutCache(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	vp := layout.Viewport{Width: 800, Height: 600}

	a := s.Layout(ctx, layout.Stacked, vp)
	s.Layout(ctx, layout.Stacked, vp)
	if s.layouts.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", s.layouts.Len())
	}
	if len(a) != 5 {
		t.Errorf("Layout() = %d positions, want 5", len(a))
	}
	s.Layout(ctx, layout.Columnar, vp)
	if s.layouts.Len() != 2 {
		t.Errorf("cache entries = %d, want 2", s.layouts.Len())
	}
}

func TestManualEdits(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	f, _ := s.Graph()
	travel := find(t, f, "Travel")

	food, err := s.AddIntent(ctx, "Food", 0)
	if err != nil {
		t.Fatalf("AddIntent(root): %v", err)
	}
	tapas, err := s.AddIntent(ctx, "Tapas", food)
	if err != nil {
		t.Fatalf("AddIntent(child): %v", err)
	}
	if _, err := s.AddIntent(ctx, "Too deep", tapas); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddIntent(under low) error = %v, want INVALID_INPUT", err)
	}
	if _, err := s.AddIntent(ctx, "  ", 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddIntent(blank) error = %v, want INVALID_INPUT", err)
	}

	if err := s.Rename(ctx, travel.ID, "Trips"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := s.SetConfirmed(ctx, travel.ID, false); err != nil {
		t.Fatalf("SetConfirmed: %v", err)
	}
	if err := s.DeleteNode(ctx, food); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if err := s.DeleteNode(ctx, food); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("DeleteNode(again) error = %v, want NOT_FOUND", err)
	}

	g, _ := s.Graph()
	trips := find(t, g, "Trips")
	if trips.Confirmed {
		t.Error("Trips still confirmed")
	}
	if _, ok := g.Node(tapas); ok {
		t.Error("Tapas survived deleting its parent")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestReextractKeepsConfirmations(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gw := store.NewGateway(st, "test", "memory")
	var gotRecords int
	ex := extract.Func(func(_ context.Context, recs []tree.Entry, scenario string, prior *tree.Tree) (*tree.Tree, error) {
		gotRecords = len(recs)
		out := &tree.Tree{}
		out.Set("Travel", tree.Entry{ID: "1", Intent: "Travel", Child: []tree.Entry{tree.NewRecord("visit Toledo")}})
		out.Set("Food", tree.Entry{ID: "2", Intent: "Food"})
		return out, nil
	})
	s := New(Options{Gateway: gw, Extractor: ex})

	if _, err := s.AddIntent(ctx, "Travel", 0); err != nil {
		t.Fatal(err)
	}
	if err := s.ImportRecords(ctx, []tree.Entry{tree.NewRecord("visit Toledo")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reextract(ctx); err != nil {
		t.Fatalf("Reextract: %v", err)
	}
	if gotRecords != 1 {
		t.Errorf("extractor saw %d records, want 1", gotRecords)
	}
	g, _ := s.Graph()
	if !find(t, g, "Travel").Confirmed {
		t.Error("Travel lost its confirmation across re-extraction")
	}
	if find(t, g, "Food").Confirmed {
		t.Error("Food confirmed without a prior confirmation")
	}
}

func TestReextractWithoutExtractor(t *testing.T) {
	if err := New(Options{}).Reextract(context.Background()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Reextract() error = %v, want INVALID_INPUT", err)
	}
}

func TestApplyRejectsStaleDrop(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t)
	f, v := s.Graph()

	d, err := s.BeginDrag(find(t, f, "Spain tips").ID)
	if err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if _, err := s.UpdateDrag(d.ID, find(t, f, "Travel").Position); err != nil {
		t.Fatalf("UpdateDrag: %v", err)
	}
	p, err := s.EndDrag(ctx, d.ID)
	if err != nil || p == nil {
		t.Fatalf("EndDrag() = %v, %v", p, err)
	}
	if p.Version != v {
		t.Errorf("Pending.Version = %d, want %d", p.Version, v)
	}
	op, err := p.Op(reorg.Merge)
	if err != nil {
		t.Fatal(err)
	}

	// a rebuild renumbers every node before the drop is applied
	other, err := tree.Parse([]byte(`{"item": {"Food": ["paella", "tapas"], "Museums": ["Prado"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Replace(ctx, other); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	before, bv := s.Graph()

	if _, err := s.Apply(ctx, op); !errors.Is(err, errors.ErrCodeStaleVersion) {
		t.Fatalf("Apply(stale) error = %v, want %v", err, errors.ErrCodeStaleVersion)
	}
	after, av := s.Graph()
	if av != bv || !after.Equal(before) {
		t.Errorf("stale apply changed the graph: v%d -> v%d", bv, av)
	}
	find(t, after, "Food")
	find(t, after, "Museums")
}

func TestDragRegistryIsBounded(t *testing.T) {
	ctx := context.Background()
	tr, err := tree.Parse([]byte(travelTree))
	if err != nil {
		t.Fatal(err)
	}
	s := New(Options{MaxDrags: 3})
	if err := s.Replace(ctx, tr); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	f, _ := s.Graph()
	travel := find(t, f, "Travel").ID

	begin := func() string {
		t.Helper()
		d, err := s.BeginDrag(travel)
		if err != nil {
			t.Fatalf("BeginDrag: %v", err)
		}
		return d.ID
	}
	ids := []string{begin(), begin(), begin()}
	// moving the first drag makes the second the least recently used
	if _, err := s.UpdateDrag(ids[0], forest.Point{X: 10}); err != nil {
		t.Fatalf("UpdateDrag: %v", err)
	}
	ids = append(ids, begin(), begin())

	if s.Drags() != 3 {
		t.Errorf("Drags() = %d, want 3", s.Drags())
	}
	tests := []struct {
		id   string
		live bool
	}{
		{ids[0], true}, {ids[1], false}, {ids[2], false}, {ids[3], true}, {ids[4], true},
	}
	for i, tt := range tests {
		_, err := s.UpdateDrag(tt.id, forest.Point{})
		if live := err == nil; live != tt.live {
			t.Errorf("drag %d live = %v, want %v (err %v)", i, live, tt.live, err)
		}
	}
}

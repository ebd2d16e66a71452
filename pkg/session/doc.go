// Package session implements the editing session: the single owner of the
// published intent forest.
//
// A [Session] ties the engine together. It loads the stored tree through a
// persistence gateway, builds and lays out the forest, hands out drags on
// private copies, applies reorganizations and manual edits under one
// mutable-graph lock, and persists every change with rollback on failure.
//
// # Lifecycle
//
//	s := session.New(session.Options{Gateway: gw, Logger: logger})
//	if err := s.Load(ctx); err != nil { ... }
//
//	d, _ := s.BeginDrag(spainID)
//	s.UpdateDrag(d.ID, pointer)
//	pending, _ := s.EndDrag(ctx, d.ID)
//	if pending != nil && pending.Possible() {
//	    op, _ := pending.Op(pending.Allowed[0])
//	    next, err := s.Apply(ctx, op)
//	}
//
// # Consistency
//
// Every published forest is immutable and carries a version. A change is
// visible as soon as it is computed; if the following save fails, the
// previous forest is published again and the caller receives
// PERSISTENCE_FAILURE. Structural errors never publish anything.
//
// A pending drop remembers the version its drag started from, and Apply
// refuses it with STALE_VERSION once anything else has been published.
package session

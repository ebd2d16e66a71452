// Package drag implements the drag and collision controller.
//
// A drag is an explicit state machine:
//
//	Idle ──Begin──▶ Dragging ──End──▶ CandidateFound | NoCandidate ──▶ Idle
//	                   │
//	                   └──Cancel──▶ Idle
//
// While dragging, [Session.Update] translates the affected subtree by the
// pointer delta and reports the nearest intent within collision range. The
// collision radius is the sum of both node radii plus a buffer; ties go to
// the first node in insertion order.
//
// [Session.End] always restores every position, opacity and highlight it
// touched, so a drag that yields no candidate leaves the forest equal to its
// pre-drag state. A drop onto a candidate is reported as a reorg.Pending for
// the caller to confirm and apply; the controller never mutates structure.
package drag

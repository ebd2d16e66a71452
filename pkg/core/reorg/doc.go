// Package reorg decides and applies reorganizations of the intent forest.
//
// # Decision Table
//
// Which operations a drop may perform depends only on the node types of the
// dragged source and the drop target. [Allowed] consults one table:
//
//	source       target       operations
//	high-intent  high-intent  merge, demote-as-child
//	low-intent   low-intent   merge
//	low-intent   high-intent  attach
//	high-intent  low-intent   demote-and-merge
//	record       low-intent   attach
//	record       high-intent  attach
//
// Every other pair (anything dropped on a record, a record on a record, an
// intent on a record) is rejected with UNSUPPORTED_MERGE_OPERATION before
// any state is touched.
//
// # Operations
//
//   - merge: the source's children move under the target, after the
//     target's own; the target is relabeled "target + source"; the source
//     is deleted.
//   - attach: the source is re-parented under the target with its subtree
//     intact.
//   - demote-as-child: the source becomes a LowIntent under the target; its
//     records become its direct children and intermediate LowIntents are
//     dropped.
//   - demote-and-merge: the source's records move directly under the target;
//     the source and its intermediate LowIntents are deleted.
//
// # Applying
//
// [Apply] validates first and then works on a clone, so the input forest is
// never mutated and an error always leaves the caller's state intact. The
// tree containing the target is re-laid out and the forest invariants are
// checked before the new forest is returned.
//
// # Pending Drops
//
// The drag controller reports a drop as a [Pending]: the pair, its types and
// the allowed operations. A pair outside the table yields an empty Allowed
// list with a Reason so a UI can explain the refusal. [Pending.Op] turns the
// user's choice into an [Op].
package reorg

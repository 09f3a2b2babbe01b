// Package tree implements the state engine behind large checkbox trees.
//
// The engine flattens a nested model.Forest into an Index addressed by Key,
// a collision-free identity derived from a node's raw id and its parent's id.
// On top of the index it maintains three independent pieces of state:
//
//   - CheckState (and its stored-flag counterpart Controller) tracks which
//     nodes are checked and derives checked / indeterminate / unchecked for
//     every other node under a model.CheckModel.
//   - ExpandState tracks expand/collapse per key, including expansion to a
//     fixed depth.
//   - Selection holds at most one selected key.
//
// All state values are immutable snapshots. Every operation returns a new
// snapshot, or the receiver itself when nothing changed, so readers may share
// a snapshot freely and change detection is a pointer comparison. Tree bundles
// the snapshots behind one mutable handle and fires the caller's callbacks
// after each committed change.
//
// Operations on unknown keys are no-ops. The only errors are structural ones
// raised while flattening: DuplicateKeyError, CycleError and ErrDepthExceeded.
//
// # Example
//
//	t, err := tree.New(forest, tree.WithCheckModel(model.LeafModel))
//	if err != nil {
//	    return err
//	}
//	key, _ := t.Index().KeyOf(model.IntID(1))
//	t.Check(key)
//	fmt.Println(t.Status(key)) // checked
package tree

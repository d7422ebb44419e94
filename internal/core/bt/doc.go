// Package bt implements a behavior-tree evaluation engine.
//
// A tree is re-evaluated once per discrete step: the driver calls Tick on the
// root with a fresh TickContext, the call recurses synchronously down the tree
// and a single Status bubbles back up. Suspension across steps is expressed only
// through StatusRunning and the resumption cursor kept by Sequence and Selector.
//
// Trees are assembled with Builder:
//
//	root, err := bt.NewBuilder().
//		Sequence("patrol").
//			Condition("has-route", hasRoute).
//			Do("walk", walk).
//		End().
//		Build()
//
// Nodes are not safe for concurrent use; a tree is ticked from one goroutine.
package bt

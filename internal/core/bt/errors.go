package bt

import "errors"

// Construction errors
var (
	ErrNoNodes                  = errors.New("Cannot create a behavior tree with zero nodes.")
	ErrUnnestedSplice           = errors.New("Cannot splice an unnested sub-tree. There must be a parent-tree.")
	ErrInverterMultipleChildren = errors.New("Can't add more than a single child to InverterNode!")
	ErrUnnestedAction           = errors.New("Can't create an unnested ActionNode. It must be a leaf node.")
	ErrUnbalancedEnd            = errors.New("Cannot end a node: no node is open.")
	ErrUnclosedNodes            = errors.New("Cannot build a behavior tree with unclosed nodes.")
	ErrMultipleRoots            = errors.New("Cannot open a second root: the tree is already closed.")
	ErrNilNode                  = errors.New("Cannot add a nil node.")
	ErrNilCallback              = errors.New("Cannot create a leaf node without a callback.")
	ErrNegativeThreshold        = errors.New("Parallel thresholds must not be negative.")
)

// Tick errors
var (
	ErrInverterNoChild = errors.New("InverterNode must have a child node!")
	ErrInvalidStatus   = errors.New("Leaf callback returned no valid status.")
)

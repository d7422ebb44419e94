package loader

import "errors"

var (
	ErrMissingRoot      = errors.New("definition has no root node")
	ErrUnknownType      = errors.New("unknown node type")
	ErrUnknownAction    = errors.New("unknown action")
	ErrUnknownCondition = errors.New("unknown condition")
	ErrUnknownSubtree   = errors.New("unknown subtree")
	ErrSubtreeCycle     = errors.New("subtree references itself")
	ErrMissingUse       = errors.New("leaf node requires 'use'")
	ErrMissingRef       = errors.New("splice requires 'ref'")
	ErrLeafChildren     = errors.New("leaf nodes cannot have children")
	ErrInvalidParams    = errors.New("invalid node params")
	ErrNoBlackboard     = errors.New("tick state is not a blackboard")
)

package bt

import (
	"context"
	"time"
)

// TickContext is handed to every node on every tick. The engine forwards it
// unchanged and never inspects Ctx or State.
type TickContext struct {
	Ctx context.Context
	// DeltaTime is the time elapsed since the previous tick.
	DeltaTime time.Duration
	// State is an arbitrary payload for leaf callbacks, typically a *blackboard.Blackboard.
	State any
}

// Context returns t.Ctx, or context.Background when it is unset.
func (t TickContext) Context() context.Context {
	if t.Ctx == nil {
		return context.Background()
	}
	return t.Ctx
}

// Kind identifies one of the fixed node variants.
type Kind uint8

const (
	KindAction Kind = iota
	KindInverter
	KindSequence
	KindSelector
	KindParallel
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "Action"
	case KindInverter:
		return "Inverter"
	case KindSequence:
		return "Sequence"
	case KindSelector:
		return "Selector"
	case KindParallel:
		return "Parallel"
	default:
		return "Unknown"
	}
}

// Node is the capability every tree element implements.
type Node interface {
	// Tick evaluates the node (and transitively its subtree) once.
	Tick(t TickContext) (Status, error)
	// Name is used for diagnostics only.
	Name() string
	// Kind reports the node variant.
	Kind() Kind
}

// Parent is a node that accepts children: the composites and the Inverter.
type Parent interface {
	Node
	AddChild(child Node) error
}

var (
	_ Node   = (*Action)(nil)
	_ Parent = (*Inverter)(nil)
	_ Parent = (*Sequence)(nil)
	_ Parent = (*Selector)(nil)
	_ Parent = (*Parallel)(nil)
)

type baseNode struct{ name string }

func (b baseNode) Name() string { return b.name }

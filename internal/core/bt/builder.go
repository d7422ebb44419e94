package bt

import (
	"fmt"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// Builder assembles a tree from a linear chain of calls.
//
// It keeps a stack of open parents (composites and inverters) and the node
// closed most recently. Opening a parent attaches it to the current top of the
// stack before pushing it, leaves and spliced subtrees attach to the top, and
// End pops.
//
// The first structural error is recorded at the call that caused it; every
// later call is a no-op and Build returns that error. Err reports it early.
type Builder struct {
	stack  []Parent
	last   Node
	err    error
	logger log.Log
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger handed to Parallel nodes for isolated child errors.
func WithLogger(logger log.Log) BuilderOption {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{logger: log.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Sequence opens a Sequence scope.
func (b *Builder) Sequence(name string, opts ...CompositeOption) *Builder {
	if b.err != nil {
		return b
	}
	return b.open(NewSequence(name, opts...))
}

// Selector opens a Selector scope.
func (b *Builder) Selector(name string, opts ...CompositeOption) *Builder {
	if b.err != nil {
		return b
	}
	return b.open(NewSelector(name, opts...))
}

// Parallel opens a Parallel scope with the given thresholds.
func (b *Builder) Parallel(name string, requiredToFail, requiredToSucceed int) *Builder {
	if b.err != nil {
		return b
	}
	if requiredToFail < 0 || requiredToSucceed < 0 {
		return b.fail(fmt.Errorf("parallel %q (fail=%d, succeed=%d): %w",
			name, requiredToFail, requiredToSucceed, ErrNegativeThreshold))
	}
	p := NewParallel(name, requiredToFail, requiredToSucceed)
	p.SetLogger(b.logger.With(log.String("tree_node", name)))
	return b.open(p)
}

// Inverter opens an Inverter scope. It must receive exactly one child.
func (b *Builder) Inverter(name string) *Builder {
	if b.err != nil {
		return b
	}
	return b.open(NewInverter(name))
}

// Do attaches an action leaf to the open scope.
func (b *Builder) Do(name string, fn ActionFunc) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 0 {
		return b.fail(fmt.Errorf("action %q: %w", name, ErrUnnestedAction))
	}
	if fn == nil {
		return b.fail(fmt.Errorf("action %q: %w", name, ErrNilCallback))
	}
	b.attach(NewAction(name, fn))
	return b
}

// Condition attaches a leaf whose predicate maps to Success or Failure.
func (b *Builder) Condition(name string, fn ConditionFunc) *Builder {
	if fn == nil {
		return b.Do(name, nil)
	}
	return b.Do(name, conditionAction(fn))
}

// Splice attaches an already built subtree to the open scope. The same
// subtree may be spliced any number of times; every occurrence is the same
// node instance.
func (b *Builder) Splice(subtree Node) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 0 {
		return b.fail(ErrUnnestedSplice)
	}
	if subtree == nil {
		return b.fail(fmt.Errorf("splice: %w", ErrNilNode))
	}
	b.attach(subtree)
	return b
}

// End closes the innermost open scope.
func (b *Builder) End() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 0 {
		return b.fail(ErrUnbalancedEnd)
	}
	top := b.stack[len(b.stack)-1]
	b.stack[len(b.stack)-1] = nil
	b.stack = b.stack[:len(b.stack)-1]
	b.last = top
	return b
}

// Build returns the most recently closed node.
func (b *Builder) Build() (Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.last == nil {
		return nil, ErrNoNodes
	}
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		return nil, fmt.Errorf("%s %q still open: %w", top.Kind(), top.Name(), ErrUnclosedNodes)
	}
	return b.last, nil
}

// Err returns the first structural error recorded, if any.
func (b *Builder) Err() error { return b.err }

// Depth returns the number of open scopes.
func (b *Builder) Depth() int { return len(b.stack) }

func (b *Builder) open(p Parent) *Builder {
	if len(b.stack) == 0 && b.last != nil {
		return b.fail(fmt.Errorf("%s %q after root %q: %w", p.Kind(), p.Name(), b.last.Name(), ErrMultipleRoots))
	}
	if len(b.stack) > 0 && !b.attach(p) {
		return b
	}
	b.stack = append(b.stack, p)
	return b
}

func (b *Builder) attach(child Node) bool {
	top := b.stack[len(b.stack)-1]
	if err := top.AddChild(child); err != nil {
		b.fail(fmt.Errorf("%s %q: add %q: %w", top.Kind(), top.Name(), child.Name(), err))
		return false
	}
	return true
}

func (b *Builder) fail(err error) *Builder {
	b.err = err
	return b
}

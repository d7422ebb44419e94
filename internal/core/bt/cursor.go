package bt

import "slices"

// cursor remembers which child a Sequence or Selector resumes from after a
// Running result. It only ever holds a valid child index or 0.
type cursor struct {
	index     int
	stateless bool
}

// begin returns the position to start ticking from.
func (c *cursor) begin(n int) int {
	if c.stateless || c.index >= n {
		c.index = 0
	}
	return c.index
}

func (c *cursor) hold(i int) { c.index = i }

func (c *cursor) reset() { c.index = 0 }

// CompositeOption configures a Sequence or Selector.
type CompositeOption func(*cursor)

// Stateless makes the composite restart from its first child on every tick
// instead of resuming the child that returned Running.
func Stateless() CompositeOption {
	return func(c *cursor) { c.stateless = true }
}

// composite holds the ordered children shared by Sequence, Selector and Parallel.
type composite struct {
	baseNode
	children []Node
}

func (c *composite) AddChild(child Node) error {
	if child == nil {
		return ErrNilNode
	}
	c.children = append(c.children, child)
	return nil
}

// Children returns the children in evaluation order.
func (c *composite) Children() []Node { return slices.Clone(c.children) }

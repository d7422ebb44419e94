package loader

import (
	"fmt"

	"github.com/zeusync/behave/internal/core/bt"
)

// Build validates the definition and assembles it through bt.Builder. Each
// subtree is built once; every splice of it attaches the same node. A nil
// registry means DefaultRegistry().
func (d *Definition) Build(reg *Registry, opts ...bt.BuilderOption) (bt.Node, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = DefaultRegistry()
	}

	c := &compiler{
		def:      d,
		reg:      reg,
		opts:     opts,
		subtrees: make(map[string]bt.Node, len(d.Subtrees)),
	}
	root, err := c.tree(*d.Root)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", d.Name, err)
	}
	return root, nil
}

type compiler struct {
	def      *Definition
	reg      *Registry
	opts     []bt.BuilderOption
	subtrees map[string]bt.Node
}

func (c *compiler) tree(n NodeDef) (bt.Node, error) {
	b := bt.NewBuilder(c.opts...)
	if err := c.emit(b, n); err != nil {
		return nil, err
	}
	return b.Build()
}

func (c *compiler) subtree(ref string) (bt.Node, error) {
	if n, ok := c.subtrees[ref]; ok {
		return n, nil
	}
	n, err := c.tree(c.def.Subtrees[ref])
	if err != nil {
		return nil, fmt.Errorf("subtree %q: %w", ref, err)
	}
	c.subtrees[ref] = n
	return n, nil
}

// emit feeds one definition node to the builder. Structural mistakes are
// recorded by the builder and reported by Build; emit only returns errors
// the builder cannot see, such as unknown leaves.
func (c *compiler) emit(b *bt.Builder, n NodeDef) error {
	name := nodeName(n)
	switch normalizeType(n.Type) {
	case TypeSequence:
		var opts []bt.CompositeOption
		if n.Stateless {
			opts = append(opts, bt.Stateless())
		}
		b.Sequence(name, opts...)
		return c.close(b, n)
	case TypeSelector:
		var opts []bt.CompositeOption
		if n.Stateless {
			opts = append(opts, bt.Stateless())
		}
		b.Selector(name, opts...)
		return c.close(b, n)
	case TypeParallel:
		b.Parallel(name, n.RequireFail, n.RequireSucceed)
		return c.close(b, n)
	case TypeInverter:
		b.Inverter(name)
		return c.close(b, n)
	case TypeAction:
		fn, err := c.reg.NewAction(n.Use, n.Params)
		if err != nil {
			return fmt.Errorf("action %q: %w", name, err)
		}
		b.Do(name, fn)
	case TypeCondition:
		fn, err := c.reg.NewCondition(n.Use, n.Params)
		if err != nil {
			return fmt.Errorf("condition %q: %w", name, err)
		}
		b.Condition(name, fn)
	case TypeSplice:
		sub, err := c.subtree(n.Ref)
		if err != nil {
			return err
		}
		b.Splice(sub)
	default:
		return fmt.Errorf("%q: %w", n.Type, ErrUnknownType)
	}
	return nil
}

func (c *compiler) close(b *bt.Builder, n NodeDef) error {
	for _, ch := range n.Children {
		if err := c.emit(b, ch); err != nil {
			return err
		}
		if b.Err() != nil {
			return nil
		}
	}
	b.End()
	return nil
}

func nodeName(n NodeDef) string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Use != "":
		return n.Use
	case n.Ref != "":
		return n.Ref
	default:
		return normalizeType(n.Type)
	}
}

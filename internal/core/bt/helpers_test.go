package bt

import (
	"context"
	"errors"
)

var errBoom = errors.New("boom")

// recorder hands out leaves that log each invocation in call order.
type recorder struct {
	calls []string
}

// leaf returns results in turn, repeating the last one once exhausted.
func (r *recorder) leaf(name string, results ...Status) *Action {
	i := 0
	return NewAction(name, func(TickContext) (Status, error) {
		r.calls = append(r.calls, name)
		st := results[min(i, len(results)-1)]
		i++
		return st, nil
	})
}

func (r *recorder) failing(name string, err error) *Action {
	return NewAction(name, func(TickContext) (Status, error) {
		r.calls = append(r.calls, name)
		return StatusFailure, err
	})
}

func (r *recorder) count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.calls = nil }

func tc() TickContext {
	return TickContext{Ctx: context.Background()}
}

func mustAdd(p Parent, children ...Node) {
	for _, ch := range children {
		if err := p.AddChild(ch); err != nil {
			panic(err)
		}
	}
}

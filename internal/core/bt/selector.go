package bt

// Selector ticks its children in order until one does not fail.
//
// Failed children are skipped within the same tick. The first Success or
// Running is returned; if every child fails the selector fails. Resumption
// mirrors Sequence: a Running child is ticked first on the next tick.
type Selector struct {
	composite
	cursor cursor
}

func NewSelector(name string, opts ...CompositeOption) *Selector {
	s := &Selector{composite: composite{baseNode: baseNode{name: name}}}
	for _, opt := range opts {
		opt(&s.cursor)
	}
	return s
}

func (s *Selector) Kind() Kind { return KindSelector }

// Stateless reports whether the selector restarts from the first child every tick.
func (s *Selector) Stateless() bool { return s.cursor.stateless }

func (s *Selector) Tick(t TickContext) (Status, error) {
	if len(s.children) == 0 {
		return StatusRunning, nil
	}
	for i := s.cursor.begin(len(s.children)); i < len(s.children); i++ {
		st, err := s.children[i].Tick(t)
		if err != nil {
			s.cursor.reset()
			return StatusFailure, err
		}
		switch st {
		case StatusRunning:
			s.cursor.hold(i)
			return StatusRunning, nil
		case StatusSuccess:
			s.cursor.reset()
			return StatusSuccess, nil
		}
	}
	s.cursor.reset()
	return StatusFailure, nil
}

package bt

// Sequence ticks its children in order until one does not succeed.
//
// A child returning Failure or Running ends the tick with that status. By
// default the sequence resumes at the Running child on the next tick; the
// cursor goes back to the first child once the sequence succeeds or fails.
type Sequence struct {
	composite
	cursor cursor
}

func NewSequence(name string, opts ...CompositeOption) *Sequence {
	s := &Sequence{composite: composite{baseNode: baseNode{name: name}}}
	for _, opt := range opts {
		opt(&s.cursor)
	}
	return s
}

func (s *Sequence) Kind() Kind { return KindSequence }

// Stateless reports whether the sequence restarts from the first child every tick.
func (s *Sequence) Stateless() bool { return s.cursor.stateless }

func (s *Sequence) Tick(t TickContext) (Status, error) {
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
		case StatusFailure:
			s.cursor.reset()
			return StatusFailure, nil
		}
	}
	s.cursor.reset()
	return StatusSuccess, nil
}

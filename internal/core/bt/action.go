package bt

import "fmt"

// ActionFunc is the external logic behind a leaf node.
type ActionFunc func(t TickContext) (Status, error)

// ConditionFunc is a predicate mapped to StatusSuccess / StatusFailure.
type ConditionFunc func(t TickContext) (bool, error)

// Action is the leaf node: it invokes its callback on every tick and returns
// the callback's status verbatim.
type Action struct {
	baseNode
	fn ActionFunc
}

// NewAction wraps fn as a leaf node.
func NewAction(name string, fn ActionFunc) *Action {
	return &Action{baseNode: baseNode{name: name}, fn: fn}
}

// NewCondition wraps a predicate as a leaf node.
func NewCondition(name string, fn ConditionFunc) *Action {
	if fn == nil {
		return NewAction(name, nil)
	}
	return NewAction(name, conditionAction(fn))
}

func conditionAction(fn ConditionFunc) ActionFunc {
	return func(t TickContext) (Status, error) {
		ok, err := fn(t)
		if err != nil {
			return StatusFailure, err
		}
		if ok {
			return StatusSuccess, nil
		}
		return StatusFailure, nil
	}
}

func (a *Action) Kind() Kind { return KindAction }

func (a *Action) Tick(t TickContext) (Status, error) {
	if a.fn == nil {
		return StatusFailure, fmt.Errorf("action %q: %w", a.name, ErrNilCallback)
	}
	st, err := a.fn(t)
	if err != nil {
		return st, err
	}
	if !st.Valid() {
		return StatusFailure, fmt.Errorf("action %q returned %d: %w", a.name, int(st), ErrInvalidStatus)
	}
	return st, nil
}

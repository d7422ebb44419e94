package loader

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// ActionFactory builds the callback of an action leaf from its params.
type ActionFactory func(params map[string]any) (bt.ActionFunc, error)

// ConditionFactory builds the predicate of a condition leaf from its params.
type ConditionFactory func(params map[string]any) (bt.ConditionFunc, error)

// Registry maps the names used in definitions to leaf factories.
// It decouples configuration from concrete implementations.
type Registry struct {
	mu         sync.RWMutex
	actions    map[string]ActionFactory
	conditions map[string]ConditionFactory
	logger     log.Log
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:    make(map[string]ActionFactory),
		conditions: make(map[string]ConditionFactory),
		logger:     log.NewNop(),
	}
}

// DefaultRegistry returns a new registry holding the builtin leaves.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// SetLogger sets the logger used by leaves that log, such as the Log builtin.
func (r *Registry) SetLogger(logger log.Log) {
	if logger == nil {
		logger = log.NewNop()
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

func (r *Registry) Logger() log.Log {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// RegisterAction adds or replaces an action factory.
func (r *Registry) RegisterAction(name string, factory ActionFactory) {
	r.mu.Lock()
	r.actions[name] = factory
	r.mu.Unlock()
}

// RegisterCondition adds or replaces a condition factory.
func (r *Registry) RegisterCondition(name string, factory ConditionFactory) {
	r.mu.Lock()
	r.conditions[name] = factory
	r.mu.Unlock()
}

func (r *Registry) NewAction(name string, params map[string]any) (bt.ActionFunc, error) {
	r.mu.RLock()
	f := r.actions[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return f(params)
}

func (r *Registry) NewCondition(name string, params map[string]any) (bt.ConditionFunc, error) {
	r.mu.RLock()
	f := r.conditions[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, name)
	}
	return f(params)
}

// Actions returns the registered action names, sorted.
func (r *Registry) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.actions))
}

// Conditions returns the registered condition names, sorted.
func (r *Registry) Conditions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.conditions))
}

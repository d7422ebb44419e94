package blackboard

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/zeusync/behave/internal/core/bt"
)

// Blackboard is the shared key/value state handed to a tree through
// bt.TickContext.State. It is safe for concurrent use.
type Blackboard struct {
	mu      sync.RWMutex
	data    map[string]any
	version int64
}

// New creates an empty blackboard.
func New() *Blackboard {
	return &Blackboard{data: make(map[string]any)}
}

// From extracts the blackboard carried by a tick's State.
func From(state any) (*Blackboard, bool) {
	bb, ok := state.(*Blackboard)
	return bb, ok && bb != nil
}

// FromTick is From(t.State).
func FromTick(t bt.TickContext) (*Blackboard, bool) {
	return From(t.State)
}

// Set stores a value and bumps the version.
func (bb *Blackboard) Set(key string, value any) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	bb.data[key] = value
	bb.version++
}

// Update reads and rewrites key under a single write lock. fn receives the
// current value and whether it exists; when fn returns store=false nothing is
// written and the version is unchanged. Update reports whether it stored.
func (bb *Blackboard) Update(key string, fn func(value any, exists bool) (next any, store bool)) bool {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	value, exists := bb.data[key]
	next, store := fn(value, exists)
	if !store {
		return false
	}
	bb.data[key] = next
	bb.version++
	return true
}

func (bb *Blackboard) Get(key string) (any, bool) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	value, exists := bb.data[key]
	return value, exists
}

func (bb *Blackboard) GetString(key string) (string, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return "", false
	}

	str, ok := value.(string)
	return str, ok
}

// GetInt accepts any integer type and whole float64 values, which is what
// numbers decoded from JSON or YAML look like.
func (bb *Blackboard) GetInt(key string) (int, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return 0, false
	}
	return ToInt(value)
}

func (bb *Blackboard) GetFloat(key string) (float64, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return 0, false
	}
	return ToFloat(value)
}

// ToInt converts the numeric shapes GetInt accepts.
func ToInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

// ToFloat converts the numeric shapes GetFloat accepts.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (bb *Blackboard) GetBool(key string) (bool, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return false, false
	}

	b, ok := value.(bool)
	return b, ok
}

func (bb *Blackboard) Has(key string) bool {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	_, exists := bb.data[key]
	return exists
}

// Delete removes a key. Deleting a missing key does not change the version.
func (bb *Blackboard) Delete(key string) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if _, exists := bb.data[key]; !exists {
		return
	}
	delete(bb.data, key)
	bb.version++
}

// Keys returns all keys in sorted order.
func (bb *Blackboard) Keys() []string {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	return slices.Sorted(maps.Keys(bb.data))
}

// Version counts mutations since creation.
func (bb *Blackboard) Version() int64 {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	return bb.version
}

// Snapshot returns a shallow copy of the data.
func (bb *Blackboard) Snapshot() map[string]any {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	return maps.Clone(bb.data)
}

type export struct {
	Data    map[string]any `json:"data"`
	Version int64          `json:"version"`
}

func (bb *Blackboard) MarshalJSON() ([]byte, error) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	return json.Marshal(export{Data: bb.data, Version: bb.version})
}

func (bb *Blackboard) UnmarshalJSON(data []byte) error {
	var in export
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to unmarshal blackboard data: %w", err)
	}
	if in.Data == nil {
		in.Data = make(map[string]any)
	}

	bb.mu.Lock()
	defer bb.mu.Unlock()

	bb.data = in.Data
	bb.version = in.Version
	return nil
}

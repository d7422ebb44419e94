package bus

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNilEvent   = errors.New("event is nil")
	ErrNilHandler = errors.New("handler is nil")
)

type simpleEvent struct {
	typeStr string
	source  string
	ts      time.Time
	data    any
	meta    map[string]any
}

func (e simpleEvent) Type() string             { return e.typeStr }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates a simple Event implementation.
func NewEvent(typ, src string, data any, metadata map[string]any) Event {
	return simpleEvent{typeStr: typ, source: src, ts: time.Now(), data: data, meta: metadata}
}

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
	once      sync.Once
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() error {
	s.once.Do(func() {
		s.active.Store(false)
		if s.cancel != nil {
			s.cancel()
		}
	})
	return nil
}

// inMemoryBus keeps subscriptions per event type in registration order.
type inMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]*subscription
}

// New creates a new EventBus instance.
func New() EventBus {
	return &inMemoryBus{handlers: make(map[string][]*subscription)}
}

func (b *inMemoryBus) Publish(event Event) error {
	if event == nil {
		return ErrNilEvent
	}

	b.mu.RLock()
	subs := slices.Clone(b.handlers[event.Type()])
	b.mu.RUnlock()

	var all error
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		if err := s.handler(event); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	s := &subscription{id: uuid.NewString(), eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[eventType] = slices.DeleteFunc(b.handlers[eventType], func(x *subscription) bool {
			return x == s
		})
		if len(b.handlers[eventType]) == 0 {
			delete(b.handlers, eventType)
		}
	}

	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], s)
	b.mu.Unlock()
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) PublishAsync(event Event) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- b.Publish(event)
		close(ch)
	}()
	return ch
}

func (b *inMemoryBus) Subscribers(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

package events

import (
	"sync"
)

// Handler receives events delivered by a Hub.
type Handler func(Event)

// Hub is the shared event source a test execution engine publishes to.
//
// Listeners register explicitly with Subscribe and deregister by closing the
// returned Subscription. Publishing is safe from any number of goroutines;
// each publish invokes the listeners registered at that instant, on the
// publishing goroutine.
type Hub struct {
	mu        sync.RWMutex
	listeners []*Subscription
}

// Subscription is the handle for one registered listener.
type Subscription struct {
	hub     *Hub
	handler Handler
	kinds   map[Kind]bool // nil means all kinds
	once    sync.Once
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers handler for the given kinds, or for every kind when
// none are given.
func (h *Hub) Subscribe(handler Handler, kinds ...Kind) *Subscription {
	sub := &Subscription{hub: h, handler: handler}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}

	h.mu.Lock()
	h.listeners = append(h.listeners, sub)
	h.mu.Unlock()
	return sub
}

// Close deregisters the listener. Closing twice is a no-op.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

func (s *Subscription) wants(k Kind) bool {
	return s.kinds == nil || s.kinds[k]
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, l := range h.listeners {
		if l == sub {
			// copy so snapshots held by in-flight publishes stay intact
			next := make([]*Subscription, 0, len(h.listeners)-1)
			next = append(next, h.listeners[:i]...)
			h.listeners = append(next, h.listeners[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of registered listeners.
func (h *Hub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Publish delivers evt to every listener subscribed to its kind.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	snapshot := h.listeners
	h.mu.RUnlock()

	for _, sub := range snapshot {
		if sub.wants(evt.Kind) {
			sub.handler(evt)
		}
	}
}

// PublishRunStart publishes a KindRunStart event.
func (h *Hub) PublishRunStart(sources []string) {
	h.Publish(NewRunStartEvent(sources))
}

// PublishDiscoveryMessage publishes a KindDiscoveryMessage event.
func (h *Hub) PublishDiscoveryMessage(level MessageLevel, text string) {
	h.Publish(NewDiscoveryMessageEvent(level, text))
}

// PublishRunMessage publishes a KindRunMessage event.
func (h *Hub) PublishRunMessage(level MessageLevel, text string) {
	h.Publish(NewRunMessageEvent(level, text))
}

// PublishResult publishes a KindResult event.
func (h *Hub) PublishResult(result TestResult) {
	h.Publish(NewResultEvent(result))
}

// PublishRunComplete publishes a KindRunComplete event.
func (h *Hub) PublishRunComplete(complete RunComplete) {
	h.Publish(NewRunCompleteEvent(complete))
}

// Package render carries viewport updates from the editor control plane to
// the rendering component. The hub broadcasts to every current subscriber;
// a slow subscriber loses updates rather than stalling the editor actor.
package render

import (
	"sync"
	"sync/atomic"

	"github.com/typlive/previewd/internal/doc"
	"github.com/typlive/previewd/internal/logging"
)

const subscriptionBuffer = 64

// Hub maintains the set of render subscribers and broadcasts viewport
// positions to all of them.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// Subscription is one render component's feed of viewport positions.
type Subscription struct {
	hub     *Hub
	ch      chan doc.DocumentPosition
	dropped atomic.Uint64
	once    sync.Once
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber and returns its feed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub: h,
		ch:  make(chan doc.DocumentPosition, subscriptionBuffer),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish delivers a viewport position to every current subscriber. It never
// blocks: a subscriber with a full buffer loses this update.
func (h *Hub) Publish(pos doc.DocumentPosition) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.ch <- pos:
		default:
			n := s.dropped.Add(1)
			logging.Warn("render subscriber lagging, dropping viewport update",
				"dropped_total", n)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Positions returns the subscriber's feed. The channel closes after Cancel.
func (s *Subscription) Positions() <-chan doc.DocumentPosition {
	return s.ch
}

// Dropped returns how many updates this subscriber has lost to a full buffer.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Cancel removes the subscription and closes its feed.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

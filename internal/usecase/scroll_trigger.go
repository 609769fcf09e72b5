package usecase

import (
	"context"
	"sync"
)

// ViewportSentinel reports when the end-of-list marker becomes visible.
// Observe registers the callback run on every visibility-enter event.
type ViewportSentinel interface {
	Observe(onEnter func(ctx context.Context))
}

// pager is the part of the list controller the trigger drives
type pager interface {
	CanLoadMore() bool
	LoadMore(ctx context.Context) bool
}

// ScrollTrigger requests the next page whenever the sentinel enters the
// viewport. Overlapping or post-exhaustion events are absorbed by the
// controller's guard.
type ScrollTrigger struct {
	list pager
}

// NewScrollTrigger creates a trigger driving list
func NewScrollTrigger(list pager) *ScrollTrigger {
	return &ScrollTrigger{list: list}
}

// Attach subscribes the trigger to a sentinel
func (t *ScrollTrigger) Attach(sentinel ViewportSentinel) {
	sentinel.Observe(func(ctx context.Context) {
		t.onEnter(ctx)
	})
}

func (t *ScrollTrigger) onEnter(ctx context.Context) bool {
	if !t.list.CanLoadMore() {
		return false
	}
	return t.list.LoadMore(ctx)
}

// Sentinel is a ViewportSentinel fired by hand, used by views that learn
// about visibility from their client (an HTTP call, a CLI prompt).
type Sentinel struct {
	mu       sync.Mutex
	handlers []func(ctx context.Context)
}

var _ ViewportSentinel = (*Sentinel)(nil)

// Observe registers onEnter
func (s *Sentinel) Observe(onEnter func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, onEnter)
}

// Enter signals that the sentinel became visible and runs the handlers in
// registration order.
func (s *Sentinel) Enter(ctx context.Context) {
	s.mu.Lock()
	handlers := make([]func(ctx context.Context), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, h := range handlers {
		h(ctx)
	}
}

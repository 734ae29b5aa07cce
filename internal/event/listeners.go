package event

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"pkg.mon.icu/relay/internal/metrics"
)

// Handle identifies a subscription so it can be removed later.
type Handle uuid.UUID

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

type subscriber[E any] struct {
	handle Handle
	fn     func(E) error
}

// Listeners is the ordered subscriber list of one event type. Writers copy
// the list, so Call always walks a stable snapshot even while other
// goroutines subscribe or unsubscribe.
type Listeners[E any] struct {
	typ     Type
	logger  *zap.Logger
	metrics *metrics.Registry

	mu   sync.Mutex
	subs atomic.Pointer[[]subscriber[E]]
}

func newListeners[E any](t Type, logger *zap.Logger, m *metrics.Registry) *Listeners[E] {
	l := &Listeners[E]{typ: t, logger: logger.With(zap.String("event", string(t))), metrics: m}
	l.subs.Store(&[]subscriber[E]{})
	return l
}

// Subscribe appends fn to the list. Subscribers run in subscription order.
func (l *Listeners[E]) Subscribe(fn func(E) error) Handle {
	h := Handle(uuid.New())

	l.mu.Lock()
	defer l.mu.Unlock()

	old := *l.subs.Load()
	subs := make([]subscriber[E], len(old), len(old)+1)
	copy(subs, old)
	subs = append(subs, subscriber[E]{handle: h, fn: fn})
	l.subs.Store(&subs)

	return h
}

// Unsubscribe removes the subscription with handle h, keeping the order of
// the others. It reports whether anything was removed.
func (l *Listeners[E]) Unsubscribe(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	old := *l.subs.Load()
	subs := make([]subscriber[E], 0, len(old))
	for _, s := range old {
		if s.handle != h {
			subs = append(subs, s)
		}
	}
	if len(subs) == len(old) {
		return false
	}
	l.subs.Store(&subs)
	return true
}

func (l *Listeners[E]) Len() int {
	return len(*l.subs.Load())
}

func (l *Listeners[E]) Empty() bool {
	return l.Len() == 0
}

// Call runs every subscriber with e, one after another. A failing
// subscriber is logged and does not stop the rest.
func (l *Listeners[E]) Call(e E) {
	for _, s := range *l.subs.Load() {
		if err := l.invoke(s, e); err != nil {
			l.logger.Error("Subscriber failed.", zap.Stringer("subscription", s.handle), zap.Error(err))
			l.metrics.RecordSubscriberFailure(string(l.typ))
		}
	}
}

func (l *Listeners[E]) invoke(s subscriber[E], e E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	return s.fn(e)
}

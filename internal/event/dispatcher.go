package event

import (
	"sort"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"pkg.mon.icu/relay/internal/metrics"
)

type counter interface {
	Len() int
}

// Dispatcher routes gateway payloads from every shard to the subscribers
// of their event type.
type Dispatcher struct {
	logger  *zap.Logger
	metrics *metrics.Registry

	mu       sync.RWMutex
	handlers map[Type]Handler
	counters map[Type]counter

	OnMessageCreate         *Listeners[*MessageCreate]
	OnMessageDelete         *Listeners[*MessageDelete]
	OnMessageDeleteBulk     *Listeners[*MessageDeleteBulk]
	OnGuildEmojisUpdate     *Listeners[*GuildEmojisUpdate]
	OnMessageReactionAdd    *Listeners[*MessageReaction]
	OnMessageReactionRemove *Listeners[*MessageReaction]
}

func NewDispatcher(log *zap.Logger, m *metrics.Registry) *Dispatcher {
	d := &Dispatcher{
		logger:   log.Named("dispatcher"),
		metrics:  m,
		handlers: make(map[Type]Handler),
		counters: make(map[Type]counter),
	}

	d.OnMessageCreate = Listen(d, TypeMessageCreate, buildMessageCreate)
	d.OnMessageDelete = Listen(d, TypeMessageDelete, buildMessageDelete)
	d.OnMessageDeleteBulk = Listen(d, TypeMessageDeleteBulk, buildMessageDeleteBulk)
	d.OnGuildEmojisUpdate = Listen(d, TypeGuildEmojisUpdate, buildGuildEmojisUpdate)
	d.OnMessageReactionAdd = Listen(d, TypeMessageReactionAdd, buildMessageReaction)
	d.OnMessageReactionRemove = Listen(d, TypeMessageReactionRemove, buildMessageReaction)

	return d
}

// Listen creates the subscriber list for t and registers a handler that
// decodes its payloads with build. It replaces any handler already
// registered for t.
func Listen[E any](d *Dispatcher, t Type, build BuildFunc[E]) *Listeners[E] {
	l := newListeners[E](t, d.logger, d.metrics)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = NewHandler(l, build)
	d.counters[t] = l

	return l
}

// Register installs h for t. Events of that type are handed to h as is.
func (d *Dispatcher) Register(t Type, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = h
	delete(d.counters, t)
}

// SubscriberCount returns the number of subscribers for t. Types
// registered through Register report zero.
func (d *Dispatcher) SubscriberCount(t Type) int {
	d.mu.RLock()
	c, ok := d.counters[t]
	d.mu.RUnlock()
	if !ok {
		return 0
	}
	return c.Len()
}

// Types returns the event types that have a handler, sorted.
func (d *Dispatcher) Types() []Type {
	d.mu.RLock()
	defer d.mu.RUnlock()

	types := make([]Type, 0, len(d.handlers))
	for t := range d.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Dispatch handles one raw gateway payload received on conn. Malformed
// payloads and unknown event types are logged and dropped.
func (d *Dispatcher) Dispatch(conn Connection, raw []byte) {
	start := time.Now()
	shard := conn.ShardID()

	if !gjson.ValidBytes(raw) {
		d.logger.Warn("Dropping malformed payload.", zap.Int("shard", shard), zap.ByteString("raw", raw))
		d.metrics.RecordDispatch("", shard, metrics.StatusMalformed, 0)
		return
	}

	payload := gjson.ParseBytes(raw)
	t := Type(payload.Get("t").String())

	d.mu.RLock()
	h, ok := d.handlers[t]
	d.mu.RUnlock()
	if !ok {
		d.logger.Debug("No handler for event.", zap.Int("shard", shard), zap.String("event", string(t)))
		d.metrics.RecordDispatch(string(t), shard, metrics.StatusUnknown, 0)
		return
	}

	if !h.Handle(conn, payload, string(raw)) {
		d.metrics.RecordDispatch(string(t), shard, metrics.StatusSkipped, 0)
		return
	}
	d.metrics.RecordDispatch(string(t), shard, metrics.StatusDispatched, time.Since(start))
}

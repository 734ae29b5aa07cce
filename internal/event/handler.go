package event

import (
	"github.com/tidwall/gjson"
)

// Handler handles one gateway event type. payload is the whole gateway
// message, raw its original text.
type Handler interface {
	Handle(conn Connection, payload gjson.Result, raw string) bool
}

// BuildFunc decodes the "d" section of a payload into an event.
type BuildFunc[E any] func(b Base, d gjson.Result) E

type handler[E any] struct {
	listeners *Listeners[E]
	build     BuildFunc[E]
}

// NewHandler returns a Handler that decodes payloads with build and passes
// the result to listeners. When listeners is empty the payload is not
// decoded at all.
func NewHandler[E any](listeners *Listeners[E], build BuildFunc[E]) Handler {
	return &handler[E]{listeners: listeners, build: build}
}

// Handle reports whether the event was dispatched.
func (h *handler[E]) Handle(conn Connection, payload gjson.Result, raw string) bool {
	if h.listeners.Empty() {
		return false
	}
	e := h.build(Base{Conn: conn, Raw: raw}, payload.Get("d"))
	h.listeners.Call(e)
	return true
}

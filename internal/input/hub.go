package input

import (
	"fmt"
	"runtime/debug"

	"eastereggs/internal/telemetry"
)

type Handler func(Signal)

type subscription struct {
	name    string
	handler Handler
}

// Hub fans signals out to named handlers in subscription order. A handler
// that panics is logged and skipped; the rest still run. Hub is not
// internally synchronized: callers serialize Dispatch with Subscribe.
type Hub struct {
	logger  telemetry.Logger
	metrics *telemetry.Metrics
	byKind  map[Kind][]subscription
	all     []subscription
}

func NewHub(logger telemetry.Logger, metrics *telemetry.Metrics) *Hub {
	if logger == nil {
		logger = telemetry.Discard()
	}
	return &Hub{logger: logger, metrics: metrics, byKind: map[Kind][]subscription{}}
}

func (h *Hub) Subscribe(kind Kind, name string, fn Handler) {
	if fn == nil {
		return
	}
	h.byKind[kind] = append(h.byKind[kind], subscription{name: name, handler: fn})
}

// SubscribeAll receives every signal before kind-specific handlers.
func (h *Hub) SubscribeAll(name string, fn Handler) {
	if fn == nil {
		return
	}
	h.all = append(h.all, subscription{name: name, handler: fn})
}

func (h *Hub) Dispatch(sig Signal) {
	h.metrics.Signal(sig.Kind.String())
	for _, sub := range h.all {
		h.call(sub, sig)
	}
	for _, sub := range h.byKind[sig.Kind] {
		h.call(sub, sig)
	}
}

func (h *Hub) call(sub subscription, sig Signal) {
	defer func() {
		if rec := recover(); rec != nil {
			h.metrics.MatcherPanic(sub.name)
			h.logger.Error("input.handler_panic", map[string]any{
				"handler": sub.name,
				"kind":    sig.Kind.String(),
				"panic":   fmt.Sprintf("%v", rec),
				"stack":   string(debug.Stack()),
			})
		}
	}()
	sub.handler(sig)
}

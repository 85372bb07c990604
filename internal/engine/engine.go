package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"eastereggs/internal/achievements"
	"eastereggs/internal/bus"
	"eastereggs/internal/hub"
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
	"eastereggs/internal/sched"
	"eastereggs/internal/state"
	"eastereggs/internal/telemetry"
	"eastereggs/internal/triggers"
)

type Options struct {
	Catalog []achievements.Definition
	Store   state.Store
	Clock   sched.Scheduler
	Bus     *bus.Bus
	Sink    notify.Sink
	Logger  telemetry.Logger
	Metrics *telemetry.Metrics
	// Matchers defaults to triggers.Default(Settings).
	Matchers  []triggers.Matcher
	Settings  triggers.Settings
	MaxToasts int
	SessionID string
}

// Engine owns every matcher, the registry and the live notifications.
// Signals, external reports and timer callbacks are serialized on one lock,
// so matcher state is only ever touched by one goroutine at a time.
type Engine struct {
	mu sync.Mutex

	clock      sched.Scheduler
	timers     *sched.Group
	registry   *achievements.Registry
	writer     *state.Writer
	input      *input.Hub
	dispatcher *notify.Dispatcher
	hub        *hub.Model
	matchers   []triggers.Matcher
	bus        *bus.Bus
	logger     telemetry.Logger
	metrics    *telemetry.Metrics
	sessionID  string

	unsubscribe func()
	started     bool
	closed      bool
}

// New builds an engine and restores the persisted unlocked set. The caller
// keeps ownership of opts.Store and closes it after Close.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("engine: store is required")
	}
	if len(opts.Catalog) == 0 {
		opts.Catalog = achievements.DefaultCatalog()
	}
	if opts.Clock == nil {
		opts.Clock = sched.NewReal()
	}
	if opts.Bus == nil {
		opts.Bus = bus.New()
	}
	if opts.Logger == nil {
		opts.Logger = telemetry.Discard()
	}
	if opts.Matchers == nil {
		opts.Matchers = triggers.Default(opts.Settings)
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	e := &Engine{
		clock:     opts.Clock,
		bus:       opts.Bus,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		sessionID: opts.SessionID,
		matchers:  opts.Matchers,
	}
	e.timers = sched.NewGroup(opts.Clock, &e.mu)
	e.writer = state.NewWriter(opts.Store, opts.Logger)
	e.registry = achievements.NewRegistry(opts.Catalog, e.writer, opts.Logger)
	e.registry.Load(ctx, opts.Store)
	e.dispatcher = notify.NewDispatcher(e.timers, opts.Sink, opts.MaxToasts)
	e.dispatcher.OnShow(func(n notify.Notification) { e.metrics.Notification(string(n.Kind)) })
	e.hub = hub.New(e.registry)
	e.input = input.NewHub(opts.Logger, opts.Metrics)

	env := engineEnv{e: e}
	for _, m := range e.matchers {
		for _, kind := range m.Kinds() {
			e.input.Subscribe(kind, m.Name(), func(sig input.Signal) { m.Handle(env, sig) })
		}
	}
	e.registry.OnUnlock(e.announce)
	e.unsubscribe = e.bus.Subscribe(bus.TopicUnlock, func(id string) {
		e.Dispatch(input.Signal{Kind: input.External, ID: id})
	})

	e.logger.Info("engine.ready", map[string]any{
		"session":  e.sessionID,
		"unlocked": len(e.registry.Unlocked()),
		"total":    len(opts.Catalog),
		"matchers": len(e.matchers),
	})
	return e, nil
}

// Start arms the timers of matchers that need one. Later calls are no-ops.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	env := engineEnv{e: e}
	for _, m := range e.matchers {
		if s, ok := m.(triggers.Starter); ok {
			s.Start(env)
		}
	}
}

// Dispatch delivers one signal to every interested matcher. A zero At is
// stamped with the engine clock.
func (e *Engine) Dispatch(sig input.Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if sig.At.IsZero() {
		sig.At = e.clock.Now()
	}
	e.input.Dispatch(sig)
}

// ReportTrigger publishes id on the external channel. It must not be called
// from inside a matcher or sink.
func (e *Engine) ReportTrigger(id string) {
	e.bus.Publish(bus.TopicUnlock, id)
}

// announce runs inside Registry.Unlock, which is always reached from the
// dispatch path with the engine lock held.
func (e *Engine) announce(def achievements.Definition) {
	e.metrics.Unlock(def.ID)
	e.hub.Unlocked(def)
	e.writer.Record(state.UnlockEntry{
		AchievementID: def.ID,
		SessionID:     e.sessionID,
		UnlockedTS:    e.clock.Now().UTC(),
	})
	e.dispatcher.Show(notify.Display{
		Kind:          notify.KindAchievement,
		AchievementID: def.ID,
		Title:         def.Name,
		Body:          def.Hint,
	})
	e.logger.Info("achievement.unlocked", map[string]any{
		"id":      def.ID,
		"rarity":  def.Rarity.String(),
		"session": e.sessionID,
	})
}

func (e *Engine) Summary() achievements.Summary {
	return e.registry.Summary()
}

func (e *Engine) Unlocked() []string {
	return e.registry.Unlocked()
}

func (e *Engine) Definition(id string) (achievements.Definition, bool) {
	return e.registry.Definition(id)
}

func (e *Engine) Hub() hub.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hub.View()
}

func (e *Engine) Notifications() []notify.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatcher.Live()
}

func (e *Engine) Overlay(o notify.Overlay) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatcher.Overlay(o)
}

func (e *Engine) SessionID() string { return e.sessionID }

// PendingTimers reports scheduled callbacks that have not run yet.
func (e *Engine) PendingTimers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timers.Len()
}

// Close cancels every timer, detaches from the bus and flushes persistence.
// It does not close the store.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.timers.Close()
	e.mu.Unlock()

	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	err := e.writer.Close()
	e.logger.Info("engine.closed", map[string]any{"session": e.sessionID})
	return err
}

type engineEnv struct {
	e *Engine
}

func (v engineEnv) Now() time.Time { return v.e.clock.Now() }

func (v engineEnv) After(d time.Duration, fn func()) sched.CancelFunc {
	return v.e.timers.After(d, fn)
}

func (v engineEnv) Unlock(id string) bool {
	return v.e.registry.Unlock(id)
}

func (v engineEnv) Show(d notify.Display) notify.Notification {
	return v.e.dispatcher.Show(d)
}

func (v engineEnv) Dismiss(id string) { v.e.dispatcher.Dismiss(id) }

func (v engineEnv) SetOverlay(o notify.Overlay, active bool) {
	v.e.dispatcher.SetOverlay(o, active)
}

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"eastereggs/internal/achievements"
	"eastereggs/internal/bus"
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
	"eastereggs/internal/sched"
	"eastereggs/internal/state"
	"eastereggs/internal/telemetry"
	"eastereggs/internal/triggers"
)

type sinkEvents struct {
	mu       sync.Mutex
	shown    []notify.Notification
	expired  []notify.Notification
	overlays map[notify.Overlay]bool
}

func newSink() *sinkEvents { return &sinkEvents{overlays: map[notify.Overlay]bool{}} }

func (s *sinkEvents) Shown(n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, n)
}

func (s *sinkEvents) Expired(n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = append(s.expired, n)
}

func (s *sinkEvents) OverlayChanged(o notify.Overlay, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays[o] = active
}

func (s *sinkEvents) achievementToasts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, n := range s.shown {
		if n.Kind == notify.KindAchievement {
			ids = append(ids, n.AchievementID)
		}
	}
	return ids
}

type harness struct {
	t     *testing.T
	clock *sched.Manual
	store *state.MemoryStore
	sink  *sinkEvents
	bus   *bus.Bus
	eng   *Engine
}

func newHarness(t *testing.T, store *state.MemoryStore, matchers []triggers.Matcher) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		clock: sched.NewManual(time.Unix(1_700_000_000, 0)),
		store: store,
		sink:  newSink(),
		bus:   bus.New(),
	}
	eng, err := New(context.Background(), Options{
		Store:    store,
		Clock:    h.clock,
		Bus:      h.bus,
		Sink:     h.sink,
		Metrics:  telemetry.NewMetrics(),
		Matchers: matchers,
		Settings: triggers.Settings{IdleTimeout: time.Minute, SessionMilestone: 5 * time.Minute},
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	h.eng = eng
	t.Cleanup(func() { _ = eng.Close() })
	return h
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.eng.Dispatch(input.Signal{Kind: input.KeyDown, Key: string(r)})
	}
}

func (h *harness) persisted() []string {
	h.t.Helper()
	raw, ok, err := h.store.Get(context.Background(), achievements.StorageKey)
	if err != nil || !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		h.t.Fatalf("persisted value is not a json array: %q", raw)
	}
	return ids
}

func TestTypedKeywordUnlocksAndAnnounces(t *testing.T) {
	h := newHarness(t, state.NewMemory(), nil)
	if got := h.eng.Summary().Unlocked; got != 0 {
		t.Fatalf("expected clean start, got %d", got)
	}
	h.typeText("xzsudo")
	if got := h.eng.Summary().Unlocked; got != 1 {
		t.Fatalf("expected exactly one unlock, got %d", got)
	}
	if toasts := h.sink.achievementToasts(); len(toasts) != 1 || toasts[0] != achievements.IDSudo {
		t.Fatalf("unexpected toasts %v", toasts)
	}
	if v := h.eng.Hub(); v.Recent == nil || v.Recent.ID != achievements.IDSudo || v.Label != "1 / 26" {
		t.Fatalf("unexpected hub view %+v", v)
	}

	h.clock.Advance(5 * time.Second)
	for _, n := range h.eng.Notifications() {
		if n.Kind == notify.KindAchievement {
			t.Fatalf("achievement toast should have expired: %+v", n)
		}
	}
}

func TestUnlockIsIdempotentAcrossSources(t *testing.T) {
	store := state.NewMemory()
	h := newHarness(t, store, nil)
	h.typeText("sudo")
	h.typeText("sudo")
	h.eng.ReportTrigger(achievements.IDSudo)
	if err := h.eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if toasts := h.sink.achievementToasts(); len(toasts) != 1 {
		t.Fatalf("expected one announcement, got %v", toasts)
	}
	if ids := h.persisted(); len(ids) != 1 || ids[0] != achievements.IDSudo {
		t.Fatalf("unexpected persisted set %v", ids)
	}
	history, _ := store.UnlockHistory(context.Background())
	if len(history) != 1 || history[0].SessionID != h.eng.SessionID() {
		t.Fatalf("expected one history entry, got %+v", history)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := state.NewMemory()
	h := newHarness(t, store, nil)
	h.typeText("java")
	h.eng.ReportTrigger(achievements.IDInspector)
	h.eng.Dispatch(input.Signal{Kind: input.ContextMenu})
	if err := h.eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	restarted := newHarness(t, store, nil)
	got := restarted.eng.Unlocked()
	want := []string{achievements.IDJava, achievements.IDInspector, achievements.IDRightClick}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v want %v", got, want)
	}
	if len(restarted.sink.achievementToasts()) != 0 {
		t.Fatalf("restored unlocks must not be announced again")
	}
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	store := state.NewMemory()
	if err := store.Set(context.Background(), achievements.StorageKey, []byte("{oops")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := newHarness(t, store, nil)
	if got := h.eng.Summary().Unlocked; got != 0 {
		t.Fatalf("expected empty set, got %d", got)
	}
	h.typeText("404")
	if err := h.eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if ids := h.persisted(); len(ids) != 1 || ids[0] != achievements.IDNotFound {
		t.Fatalf("expected corrupt record replaced, got %v", ids)
	}
}

func TestExternalChannel(t *testing.T) {
	h := newHarness(t, state.NewMemory(), nil)
	h.bus.Publish(bus.TopicUnlock, achievements.IDPixelPeeper)
	h.eng.ReportTrigger("no-such-achievement")
	h.eng.ReportTrigger("")
	got := h.eng.Unlocked()
	if len(got) != 1 || got[0] != achievements.IDPixelPeeper {
		t.Fatalf("unexpected unlocked set %v", got)
	}
}

func TestIdleAndSessionTimers(t *testing.T) {
	h := newHarness(t, state.NewMemory(), nil)
	h.eng.Start()
	h.eng.Start()

	h.clock.Advance(30 * time.Second)
	h.eng.Dispatch(input.Signal{Kind: input.Activity})
	h.clock.Advance(59 * time.Second)
	if len(h.eng.Unlocked()) != 0 {
		t.Fatalf("activity should restart the idle countdown")
	}
	h.clock.Advance(time.Second)
	if !h.eng.Overlay(notify.OverlayIdle) {
		t.Fatalf("expected idle overlay")
	}
	h.eng.Dispatch(input.Signal{Kind: input.Click})
	if h.eng.Overlay(notify.OverlayIdle) {
		t.Fatalf("expected activity to clear the idle overlay")
	}

	h.clock.Advance(5 * time.Minute)
	unlocked := strings.Join(h.eng.Unlocked(), ",")
	if !strings.Contains(unlocked, achievements.IDIdle) || !strings.Contains(unlocked, achievements.IDMarathon) {
		t.Fatalf("expected idle and marathon, got %s", unlocked)
	}
}

func TestCloseCancelsTimers(t *testing.T) {
	h := newHarness(t, state.NewMemory(), nil)
	h.eng.Start()
	h.typeText("java")
	if h.eng.PendingTimers() == 0 {
		t.Fatalf("expected pending timers before close")
	}
	if err := h.eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if h.eng.PendingTimers() != 0 {
		t.Fatalf("expected no pending timers after close")
	}
	before := len(h.sink.expired)
	h.clock.Advance(time.Hour)
	if len(h.sink.expired) != before {
		t.Fatalf("timers fired after close")
	}
	h.eng.Dispatch(input.Signal{Kind: input.ContextMenu})
	if strings.Contains(strings.Join(h.eng.Unlocked(), ","), achievements.IDRightClick) {
		t.Fatalf("dispatch after close should be ignored")
	}
}

type panicky struct{}

func (panicky) Name() string { return "panicky" }

func (panicky) Kinds() []input.Kind { return []input.Kind{input.KeyDown} }

func (panicky) Handle(triggers.Env, input.Signal) { panic("bad matcher") }

func TestPanickingMatcherDoesNotBreakOthers(t *testing.T) {
	var logs bytes.Buffer
	store := state.NewMemory()
	eng, err := New(context.Background(), Options{
		Store:    store,
		Clock:    sched.NewManual(time.Unix(0, 0)),
		Logger:   telemetry.NewWriterLogger(&logs),
		Matchers: append([]triggers.Matcher{panicky{}}, triggers.Default(triggers.Settings{})...),
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	defer eng.Close()
	for _, r := range "java" {
		eng.Dispatch(input.Signal{Kind: input.KeyDown, Key: string(r)})
	}
	if got := eng.Unlocked(); len(got) != 1 || got[0] != achievements.IDJava {
		t.Fatalf("expected java despite the panicking matcher, got %v", got)
	}
	if !strings.Contains(logs.String(), "input.handler_panic") {
		t.Fatalf("expected panic to be logged")
	}
}

func TestToastCap(t *testing.T) {
	h := newHarness(t, state.NewMemory(), nil)
	for _, id := range []string{
		achievements.IDInspector, achievements.IDIndecisive, achievements.IDPixelPeeper,
		achievements.IDRightClick, achievements.IDEarthquake,
	} {
		h.eng.ReportTrigger(id)
	}
	count := 0
	for _, n := range h.eng.Notifications() {
		if n.Kind == notify.KindAchievement {
			count++
		}
	}
	if count != notify.DefaultMaxLive {
		t.Fatalf("expected %d live toasts, got %d", notify.DefaultMaxLive, count)
	}
}

func TestLiveNotificationsStayBounded(t *testing.T) {
	h := newHarness(t, state.NewMemory(), nil)
	for i := 0; i < 40; i++ {
		h.eng.Dispatch(input.Signal{Kind: input.MouseUp, Text: "selected words"})
		h.eng.Dispatch(input.Signal{Kind: input.DoubleClick, X: i, Y: 3})
		if got := len(h.eng.Notifications()); got > notify.DefaultMaxLive {
			t.Fatalf("round %d: %d live notifications, limit %d", i, got, notify.DefaultMaxLive)
		}
	}
	if !h.eng.registry.Has(achievements.IDHighlighter) || !h.eng.registry.Has(achievements.IDNullPointer) {
		t.Fatalf("expected both observers to unlock, got %v", h.eng.Unlocked())
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without a store")
	}
}

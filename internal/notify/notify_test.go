package notify

import (
	"sync"
	"testing"
	"time"

	"eastereggs/internal/sched"
)

type recordingSink struct {
	shown    []Notification
	expired  []Notification
	overlays []string
}

func (s *recordingSink) Shown(n Notification)   { s.shown = append(s.shown, n) }
func (s *recordingSink) Expired(n Notification) { s.expired = append(s.expired, n) }
func (s *recordingSink) OverlayChanged(o Overlay, active bool) {
	state := "off"
	if active {
		state = "on"
	}
	s.overlays = append(s.overlays, string(o)+":"+state)
}

type fixture struct {
	clock *sched.Manual
	mu    *sync.Mutex
	sink  *recordingSink
	d     *Dispatcher
}

func newFixture(max int) *fixture {
	clock := sched.NewManual(time.Unix(1_700_000_000, 0))
	mu := &sync.Mutex{}
	sink := &recordingSink{}
	return &fixture{clock: clock, mu: mu, sink: sink, d: NewDispatcher(sched.NewGroup(clock, mu), sink, max)}
}

func (f *fixture) show(disp Display) Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.d.Show(disp)
}

func (f *fixture) live() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.d.Live()
}

func TestShowExpiresAfterKindDuration(t *testing.T) {
	f := newFixture(0)
	n := f.show(Display{Kind: KindResize, Title: "800x600"})
	if n.ID == "" || n.ExpiresAt.Sub(n.ShownAt) != 1200*time.Millisecond {
		t.Fatalf("unexpected notification %+v", n)
	}
	f.clock.Advance(1199 * time.Millisecond)
	if len(f.live()) != 1 {
		t.Fatalf("expected notification still visible")
	}
	f.clock.Advance(time.Millisecond)
	if len(f.live()) != 0 || len(f.sink.expired) != 1 || f.sink.expired[0].ID != n.ID {
		t.Fatalf("expected expiry, sink=%+v", f.sink)
	}
}

func TestExplicitDurationWins(t *testing.T) {
	f := newFixture(0)
	f.show(Display{Kind: KindGreeting, Duration: 10 * time.Millisecond})
	f.clock.Advance(10 * time.Millisecond)
	if len(f.live()) != 0 {
		t.Fatalf("expected explicit duration to be honored")
	}
}

func TestLiveNotificationsAreCapped(t *testing.T) {
	f := newFixture(2)
	first := f.show(Display{Kind: KindAchievement, AchievementID: "a"})
	java := f.show(Display{Kind: KindJava})
	f.show(Display{Kind: KindAchievement, AchievementID: "b"})
	f.show(Display{Kind: KindAchievement, AchievementID: "c"})

	live := f.live()
	if len(live) != 2 || live[0].AchievementID != "b" || live[1].AchievementID != "c" {
		t.Fatalf("expected the two newest notifications, got %+v", live)
	}
	if len(f.sink.expired) != 2 || f.sink.expired[0].ID != first.ID || f.sink.expired[1].ID != java.ID {
		t.Fatalf("expected oldest-first eviction to be reported, got %+v", f.sink.expired)
	}
	// Evicted timers must not fire a second expiry.
	f.clock.Advance(time.Minute)
	if len(f.sink.expired) != 4 {
		t.Fatalf("expected 4 total expiries, got %d", len(f.sink.expired))
	}
}

func TestCapAppliesToEveryKind(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{name: "selection", kind: KindSelection},
		{name: "null pointer", kind: KindNullPointer},
		{name: "context menu", kind: KindContextMenu},
		{name: "mixed", kind: ""},
	}
	kinds := []Kind{KindSelection, KindNullPointer, KindGreeting, KindShake, KindAchievement}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(0)
			for i := 0; i < 40; i++ {
				kind := tc.kind
				if kind == "" {
					kind = kinds[i%len(kinds)]
				}
				f.show(Display{Kind: kind, X: i, Y: i})
				if got := len(f.live()); got > DefaultMaxLive {
					t.Fatalf("after %d displays %d are live, limit %d", i+1, got, DefaultMaxLive)
				}
			}
			if got := len(f.live()); got != DefaultMaxLive {
				t.Fatalf("expected %d live, got %d", DefaultMaxLive, got)
			}
		})
	}
}

func TestDismiss(t *testing.T) {
	f := newFixture(0)
	n := f.show(Display{Kind: KindResize})
	f.mu.Lock()
	f.d.Dismiss(n.ID)
	f.d.Dismiss(n.ID)
	f.d.Dismiss("unknown")
	f.mu.Unlock()
	f.clock.Advance(time.Minute)
	if len(f.sink.expired) != 1 {
		t.Fatalf("expected single expiry, got %d", len(f.sink.expired))
	}
}

func TestSetOverlayReportsChangesOnly(t *testing.T) {
	f := newFixture(0)
	f.mu.Lock()
	f.d.SetOverlay(OverlayIdle, true)
	f.d.SetOverlay(OverlayIdle, true)
	f.d.SetOverlay(OverlayIdle, false)
	f.d.SetOverlay(OverlayIdle, false)
	f.d.SetOverlay(OverlayAPI, true)
	active := f.d.Overlay(OverlayAPI)
	f.mu.Unlock()
	if !active {
		t.Fatalf("expected api overlay active")
	}
	want := []string{"idle:on", "idle:off", "api:on"}
	if len(f.sink.overlays) != len(want) {
		t.Fatalf("got %v want %v", f.sink.overlays, want)
	}
	for i := range want {
		if f.sink.overlays[i] != want[i] {
			t.Fatalf("got %v want %v", f.sink.overlays, want)
		}
	}
}

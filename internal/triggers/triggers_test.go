package triggers

import (
	"strings"
	"sync"
	"testing"
	"time"

	"eastereggs/internal/achievements"
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
	"eastereggs/internal/sched"
)

type fakeEnv struct {
	mu       *sync.Mutex
	clock    *sched.Manual
	group    *sched.Group
	unlocks  []string
	seen     map[string]bool
	shown    []notify.Display
	nextID   int
	dismiss  []string
	overlays map[notify.Overlay]bool
}

func newFakeEnv() *fakeEnv {
	mu := &sync.Mutex{}
	clock := sched.NewManual(time.Unix(1_700_000_000, 0))
	return &fakeEnv{
		mu:       mu,
		clock:    clock,
		group:    sched.NewGroup(clock, mu),
		seen:     map[string]bool{},
		overlays: map[notify.Overlay]bool{},
	}
}

func (e *fakeEnv) Now() time.Time { return e.clock.Now() }

func (e *fakeEnv) After(d time.Duration, fn func()) sched.CancelFunc { return e.group.After(d, fn) }

func (e *fakeEnv) Unlock(id string) bool {
	e.unlocks = append(e.unlocks, id)
	if e.seen[id] {
		return false
	}
	e.seen[id] = true
	return true
}

func (e *fakeEnv) Show(d notify.Display) notify.Notification {
	e.shown = append(e.shown, d)
	e.nextID++
	return notify.Notification{ID: string(rune('a' + e.nextID)), Kind: d.Kind}
}

func (e *fakeEnv) Dismiss(id string) { e.dismiss = append(e.dismiss, id) }

func (e *fakeEnv) SetOverlay(o notify.Overlay, active bool) { e.overlays[o] = active }

func (e *fakeEnv) start(m Matcher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := m.(Starter); ok {
		s.Start(e)
	}
}

func (e *fakeEnv) send(m Matcher, sig input.Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sig.At.IsZero() {
		sig.At = e.clock.Now()
	}
	m.Handle(e, sig)
}

func (e *fakeEnv) typeKeys(m Matcher, text string) {
	for _, r := range text {
		e.send(m, input.Signal{Kind: input.KeyDown, Key: string(r)})
	}
}

func (e *fakeEnv) pressKeys(m Matcher, keys ...string) {
	for _, k := range keys {
		e.send(m, input.Signal{Kind: input.KeyDown, Key: k})
	}
}

func (e *fakeEnv) unlockCount(id string) int {
	n := 0
	for _, u := range e.unlocks {
		if u == id {
			n++
		}
	}
	return n
}

func newKeyword() *Keyword {
	return NewKeyword(Words(), Greetings, achievements.IDPolyglot)
}

func TestKeywordEveryWordFiresOnlyItself(t *testing.T) {
	cases := map[string]string{
		"java":     achievements.IDJava,
		"sudo":     achievements.IDSudo,
		"gitblame": achievements.IDGitBlame,
		"rmrf":     achievements.IDRmRf,
		"404":      achievements.IDNotFound,
	}
	for _, g := range Greetings {
		cases[g.Word] = achievements.IDPolyglot
	}
	for word, want := range cases {
		t.Run(word, func(t *testing.T) {
			env := newFakeEnv()
			k := newKeyword()
			env.typeKeys(k, word)
			if len(env.unlocks) != 1 || env.unlocks[0] != want {
				t.Fatalf("typing %q unlocked %v, want only %s", word, env.unlocks, want)
			}
			if k.Buffer() != "" {
				t.Fatalf("expected buffer cleared after match, got %q", k.Buffer())
			}
		})
	}
}

func TestKeywordEmbeddedWordFiresAtTrailingMatch(t *testing.T) {
	env := newFakeEnv()
	k := newKeyword()
	env.typeKeys(k, "ajav")
	if len(env.unlocks) != 0 {
		t.Fatalf("fired too early: %v", env.unlocks)
	}
	env.typeKeys(k, "a")
	if len(env.unlocks) != 1 || env.unlocks[0] != achievements.IDJava {
		t.Fatalf("expected java at the trailing match, got %v", env.unlocks)
	}
	env.typeKeys(k, "script")
	if len(env.unlocks) != 1 {
		t.Fatalf("rest of the word should not fire again: %v", env.unlocks)
	}
	if len(env.shown) != 1 || env.shown[0].Kind != notify.KindJava {
		t.Fatalf("expected java display, got %+v", env.shown)
	}
}

func TestKeywordSudoScenario(t *testing.T) {
	env := newFakeEnv()
	k := newKeyword()
	env.typeKeys(k, "xzsudo")
	if env.unlockCount(achievements.IDSudo) != 1 || len(env.unlocks) != 1 {
		t.Fatalf("expected one sudo unlock, got %v", env.unlocks)
	}
}

func TestKeywordSeparatorInsensitiveWords(t *testing.T) {
	tests := []struct {
		name  string
		typed string
		want  string
	}{
		{name: "single space", typed: "git blame", want: achievements.IDGitBlame},
		{name: "run of spaces", typed: "git   blame", want: achievements.IDGitBlame},
		{name: "wide gap", typed: "git" + strings.Repeat(" ", 20) + "blame", want: achievements.IDGitBlame},
		{name: "dash flags", typed: "rm -rf", want: achievements.IDRmRf},
		{name: "spaced flags", typed: "rm  - r f", want: achievements.IDRmRf},
		{name: "other character breaks it", typed: "gitxblame", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newFakeEnv()
			k := newKeyword()
			env.typeKeys(k, tc.typed)
			if got := strings.Join(env.unlocks, ","); got != tc.want {
				t.Fatalf("typed %q: got unlocks %q, want %q", tc.typed, got, tc.want)
			}
		})
	}
}

func TestKeywordIgnoresTextFieldsAndNamedKeys(t *testing.T) {
	env := newFakeEnv()
	k := newKeyword()
	for _, r := range "java" {
		env.send(k, input.Signal{Kind: input.KeyDown, Key: string(r), InTextField: true})
	}
	env.pressKeys(k, "j", "a", input.KeyArrowUp, "v", "a")
	if len(env.unlocks) != 1 || env.unlocks[0] != achievements.IDJava {
		t.Fatalf("expected only the page-level java to fire, got %v", env.unlocks)
	}
}

func TestKeywordGreetingDisplay(t *testing.T) {
	env := newFakeEnv()
	k := newKeyword()
	env.typeKeys(k, "bonjour")
	if len(env.shown) != 1 || env.shown[0].Kind != notify.KindGreeting || env.shown[0].Title != "French" {
		t.Fatalf("unexpected display %+v", env.shown)
	}
}

func TestKeywordBufferIsBounded(t *testing.T) {
	k := newKeyword()
	env := newFakeEnv()
	env.typeKeys(k, strings.Repeat("x", 50))
	if got := len([]rune(k.Buffer())); got != len("konnichiwa") {
		t.Fatalf("expected buffer capped at longest word, got %d", got)
	}
}

func TestSequenceExactRunFires(t *testing.T) {
	env := newFakeEnv()
	s := NewSequence("konami", KonamiCode, achievements.IDKonami, nil)
	env.pressKeys(s, KonamiCode...)
	if len(env.unlocks) != 1 || env.unlocks[0] != achievements.IDKonami || s.Position() != 0 {
		t.Fatalf("expected konami unlock and reset, got %v pos=%d", env.unlocks, s.Position())
	}
}

func TestSequenceDeviationResets(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{name: "wrong key resets to zero", keys: []string{input.KeyArrowUp, input.KeyArrowUp, input.KeyArrowDown, "x"}, want: 0},
		{name: "first key restarts at one", keys: []string{input.KeyArrowUp, input.KeyArrowUp, input.KeyArrowDown, input.KeyArrowUp}, want: 1},
		{name: "third up restarts at one", keys: []string{input.KeyArrowUp, input.KeyArrowUp, input.KeyArrowUp}, want: 1},
		{name: "progress", keys: []string{input.KeyArrowUp, input.KeyArrowUp, input.KeyArrowDown}, want: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newFakeEnv()
			s := NewSequence("konami", KonamiCode, achievements.IDKonami, nil)
			env.pressKeys(s, tc.keys...)
			if s.Position() != tc.want {
				t.Fatalf("position=%d want %d", s.Position(), tc.want)
			}
		})
	}
}

func TestSequenceNearMissDoesNotFire(t *testing.T) {
	env := newFakeEnv()
	s := NewSequence("konami", KonamiCode, achievements.IDKonami, nil)
	keys := append([]string(nil), KonamiCode...)
	keys[8] = "a"
	env.pressKeys(s, keys...)
	if len(env.unlocks) != 0 {
		t.Fatalf("near miss fired: %v", env.unlocks)
	}
}

func TestIdleFiresOnceAfterQuietPeriod(t *testing.T) {
	env := newFakeEnv()
	idle := NewIdle(time.Minute, achievements.IDIdle)
	env.start(idle)

	env.clock.Advance(59 * time.Second)
	env.send(idle, input.Signal{Kind: input.Activity})
	env.clock.Advance(59 * time.Second)
	if len(env.unlocks) != 0 {
		t.Fatalf("activity should have restarted the countdown")
	}
	env.clock.Advance(time.Second)
	if env.unlockCount(achievements.IDIdle) != 1 || !env.overlays[notify.OverlayIdle] {
		t.Fatalf("expected idle unlock and overlay, got %v %v", env.unlocks, env.overlays)
	}
	env.clock.Advance(10 * time.Minute)
	if env.unlockCount(achievements.IDIdle) != 1 {
		t.Fatalf("idle fired more than once without activity")
	}

	env.send(idle, input.Signal{Kind: input.KeyDown, Key: "a"})
	if env.overlays[notify.OverlayIdle] {
		t.Fatalf("activity should clear the idle overlay")
	}
	if env.clock.Pending() != 1 {
		t.Fatalf("expected the timer to be rearmed, pending=%d", env.clock.Pending())
	}
}

func TestSessionTimerIsLatched(t *testing.T) {
	env := newFakeEnv()
	s := NewSessionTimer(5*time.Minute, achievements.IDMarathon)
	env.start(s)
	env.clock.Advance(4 * time.Minute)
	if len(env.unlocks) != 0 {
		t.Fatalf("fired early")
	}
	env.clock.Advance(time.Minute)
	env.start(s)
	env.clock.Advance(time.Hour)
	if env.unlockCount(achievements.IDMarathon) != 1 {
		t.Fatalf("expected exactly one marathon unlock, got %v", env.unlocks)
	}
}

func TestMilestonesFireAtExactCounts(t *testing.T) {
	env := newFakeEnv()
	m := NewMilestones([]Milestone{
		{Count: 10, ID: achievements.IDClicks10},
		{Count: 50, ID: achievements.IDClicks50},
		{Count: 100, ID: achievements.IDClicks100},
	})
	fired := map[int]string{}
	for i := 1; i <= 150; i++ {
		before := len(env.unlocks)
		env.send(m, input.Signal{Kind: input.Click})
		if len(env.unlocks) > before {
			fired[i] = env.unlocks[len(env.unlocks)-1]
		}
	}
	if len(fired) != 3 || fired[10] != achievements.IDClicks10 || fired[50] != achievements.IDClicks50 || fired[100] != achievements.IDClicks100 {
		t.Fatalf("unexpected milestone firings %v", fired)
	}
}

func TestEscapeBurst(t *testing.T) {
	newEscape := func() *Burst {
		return NewBurst("escape", input.KeyDown, KeyIs(input.KeyEscape), time.Second, 3, achievements.IDEscape)
	}
	base := time.Unix(1_700_000_000, 0)

	env := newFakeEnv()
	b := newEscape()
	for _, off := range []time.Duration{0, 400 * time.Millisecond, 800 * time.Millisecond} {
		env.send(b, input.Signal{Kind: input.KeyDown, Key: input.KeyEscape, At: base.Add(off)})
	}
	if env.unlockCount(achievements.IDEscape) != 1 {
		t.Fatalf("three escapes within 800ms should fire, got %v", env.unlocks)
	}

	env = newFakeEnv()
	b = newEscape()
	for _, off := range []time.Duration{0, 2 * time.Second, 4 * time.Second} {
		env.send(b, input.Signal{Kind: input.KeyDown, Key: input.KeyEscape, At: base.Add(off)})
	}
	if len(env.unlocks) != 0 {
		t.Fatalf("escapes 2s apart should not fire, got %v", env.unlocks)
	}

	env = newFakeEnv()
	b = newEscape()
	env.send(b, input.Signal{Kind: input.KeyDown, Key: input.KeyEscape, At: base})
	env.send(b, input.Signal{Kind: input.KeyDown, Key: "x", At: base})
	env.send(b, input.Signal{Kind: input.KeyDown, Key: input.KeyEscape, At: base})
	if len(env.unlocks) != 0 {
		t.Fatalf("other keys must not count")
	}
}

func TestTargetBurstOnlyCountsItsTarget(t *testing.T) {
	env := newFakeEnv()
	b := NewBurst("name", input.Click, TargetIs(input.TargetName), 600*time.Millisecond, 3, achievements.IDNameTriple)
	base := time.Unix(1_700_000_000, 0)
	env.send(b, input.Signal{Kind: input.Click, Target: input.TargetName, At: base})
	env.send(b, input.Signal{Kind: input.Click, Target: input.TargetAvatar, At: base.Add(100 * time.Millisecond)})
	env.send(b, input.Signal{Kind: input.Click, Target: input.TargetName, At: base.Add(200 * time.Millisecond)})
	if len(env.unlocks) != 0 {
		t.Fatalf("fired with two name clicks")
	}
	env.send(b, input.Signal{Kind: input.Click, Target: input.TargetName, At: base.Add(300 * time.Millisecond)})
	if env.unlockCount(achievements.IDNameTriple) != 1 {
		t.Fatalf("expected name-triple, got %v", env.unlocks)
	}
}

func TestWindowClearsAfterFiring(t *testing.T) {
	w := NewWindow(time.Second, 2)
	base := time.Unix(0, 0)
	if w.Hit(base) {
		t.Fatalf("fired at one hit")
	}
	if !w.Hit(base.Add(time.Second)) {
		t.Fatalf("expected fire at the window edge")
	}
	if w.Len() != 0 {
		t.Fatalf("expected window cleared")
	}
}

func TestScrollEndIsLatched(t *testing.T) {
	env := newFakeEnv()
	s := NewScrollEnd(2, achievements.IDRockBottom)
	env.send(s, input.Signal{Kind: input.Scroll, ScrollTop: 10, ViewHeight: 20, ContentHeight: 100})
	env.send(s, input.Signal{Kind: input.Scroll, ScrollTop: 79, ViewHeight: 20, ContentHeight: 100})
	env.send(s, input.Signal{Kind: input.Scroll, ScrollTop: 80, ViewHeight: 20, ContentHeight: 100})
	if env.unlockCount(achievements.IDRockBottom) != 1 || len(env.unlocks) != 1 {
		t.Fatalf("expected one rock-bottom unlock, got %v", env.unlocks)
	}
}

func TestResizeShowsEveryTimeAndDismissesPrevious(t *testing.T) {
	env := newFakeEnv()
	r := NewResize(achievements.IDShapeShifter)
	env.send(r, input.Signal{Kind: input.Resize, Width: 80, Height: 24})
	env.send(r, input.Signal{Kind: input.Resize, Width: 120, Height: 40})
	if len(env.shown) != 2 || env.shown[1].Title != "120x40" {
		t.Fatalf("unexpected displays %+v", env.shown)
	}
	if len(env.dismiss) != 1 {
		t.Fatalf("expected previous hint dismissed, got %v", env.dismiss)
	}
	if env.unlockCount(achievements.IDShapeShifter) != 2 || len(env.seen) != 1 {
		t.Fatalf("unlock requests should be deduplicated by the registry: %v", env.unlocks)
	}
}

func TestSelectionBounds(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "ab", want: false},
		{text: "  ab  ", want: false},
		{text: "abc", want: true},
		{text: strings.Repeat("x", 99), want: true},
		{text: strings.Repeat("x", 100), want: false},
	}
	for _, tc := range tests {
		env := newFakeEnv()
		s := NewSelection(3, 99, achievements.IDHighlighter)
		env.send(s, input.Signal{Kind: input.MouseUp, Text: tc.text})
		if got := len(env.shown) == 1; got != tc.want {
			t.Fatalf("selection of %d chars: shown=%v want %v", len(tc.text), got, tc.want)
		}
	}
}

func TestSelectionRefiresDisplay(t *testing.T) {
	env := newFakeEnv()
	s := NewSelection(3, 99, achievements.IDHighlighter)
	env.send(s, input.Signal{Kind: input.MouseUp, Text: "hello"})
	env.send(s, input.Signal{Kind: input.MouseUp, Text: "hello"})
	if len(env.shown) != 2 {
		t.Fatalf("expected a display per selection, got %d", len(env.shown))
	}
}

func TestRouteFollowsFragment(t *testing.T) {
	env := newFakeEnv()
	r := NewRoute(APIFragment, notify.OverlayAPI, achievements.IDSecretAPI)
	env.send(r, input.Signal{Kind: input.Fragment, Fragment: "#/projects"})
	if env.overlays[notify.OverlayAPI] || len(env.unlocks) != 0 {
		t.Fatalf("other fragments must not activate the overlay")
	}
	env.send(r, input.Signal{Kind: input.Fragment, Fragment: APIFragment})
	if !env.overlays[notify.OverlayAPI] || env.unlockCount(achievements.IDSecretAPI) != 1 {
		t.Fatalf("expected api overlay and unlock")
	}
	env.send(r, input.Signal{Kind: input.Fragment, Fragment: ""})
	if env.overlays[notify.OverlayAPI] {
		t.Fatalf("expected overlay hidden when fragment cleared")
	}
}

func TestNullPointerSkipsInteractiveTargets(t *testing.T) {
	env := newFakeEnv()
	n := NewNullPointer(achievements.IDNullPointer)
	env.send(n, input.Signal{Kind: input.DoubleClick, Interactive: true})
	if len(env.unlocks) != 0 {
		t.Fatalf("interactive double-click should be ignored")
	}
	env.send(n, input.Signal{Kind: input.DoubleClick, X: 4, Y: 7})
	if len(env.shown) != 1 || env.shown[0].Kind != notify.KindNullPointer || env.shown[0].X != 4 || env.shown[0].Y != 7 {
		t.Fatalf("unexpected displays %+v", env.shown)
	}
}

func TestShakeThresholdAndCooldown(t *testing.T) {
	env := newFakeEnv()
	s := NewShake(ShakeThreshold, time.Second, achievements.IDEarthquake)
	base := time.Unix(1_700_000_000, 0)
	env.send(s, input.Signal{Kind: input.Motion, Accel: 24.9, At: base})
	env.send(s, input.Signal{Kind: input.Motion, Accel: 30, At: base})
	env.send(s, input.Signal{Kind: input.Motion, Accel: 30, At: base.Add(500 * time.Millisecond)})
	env.send(s, input.Signal{Kind: input.Motion, Accel: 30, At: base.Add(1500 * time.Millisecond)})
	if len(env.shown) != 2 {
		t.Fatalf("expected 2 shake displays, got %d", len(env.shown))
	}
}

func TestExternalPassesIDThrough(t *testing.T) {
	env := newFakeEnv()
	var ext External
	env.send(ext, input.Signal{Kind: input.External})
	env.send(ext, input.Signal{Kind: input.External, ID: achievements.IDInspector})
	if len(env.unlocks) != 1 || env.unlocks[0] != achievements.IDInspector {
		t.Fatalf("unexpected unlocks %v", env.unlocks)
	}
}

func TestDefaultCoversCatalog(t *testing.T) {
	matchers := Default(Settings{})
	names := map[string]bool{}
	for _, m := range matchers {
		if names[m.Name()] {
			t.Fatalf("duplicate matcher name %q", m.Name())
		}
		names[m.Name()] = true
	}
	if len(matchers) != 17 {
		t.Fatalf("expected 17 matchers, got %d", len(matchers))
	}
}

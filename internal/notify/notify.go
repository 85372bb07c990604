package notify

import (
	"time"

	"github.com/google/uuid"

	"eastereggs/internal/sched"
)

type Kind string

const (
	KindAchievement Kind = "achievement"
	KindJava        Kind = "java"
	KindGreeting    Kind = "greeting"
	KindKonami      Kind = "konami"
	KindNullPointer Kind = "npe"
	KindResize      Kind = "resize"
	KindSelection   Kind = "selection"
	KindContextMenu Kind = "contextmenu"
	KindShake       Kind = "shake"
)

var durations = map[Kind]time.Duration{
	KindAchievement: 5 * time.Second,
	KindJava:        7 * time.Second,
	KindGreeting:    4 * time.Second,
	KindKonami:      8 * time.Second,
	KindNullPointer: 3500 * time.Millisecond,
	KindResize:      1200 * time.Millisecond,
	KindSelection:   3 * time.Second,
	KindContextMenu: 2 * time.Second,
	KindShake:       4 * time.Second,
}

// DefaultDuration is how long a display of kind stays visible.
func DefaultDuration(kind Kind) time.Duration {
	if d, ok := durations[kind]; ok {
		return d
	}
	return 3 * time.Second
}

// Overlay is a persistent page mode, as opposed to a timed display.
type Overlay string

const (
	OverlayIdle Overlay = "idle"
	OverlayAPI  Overlay = "api"
)

// DefaultMaxLive bounds concurrently visible notifications of every kind.
const DefaultMaxLive = 4

// Display is a request to show something transient.
type Display struct {
	Kind          Kind
	AchievementID string
	Title         string
	Body          string
	// X, Y anchor pointer-positioned displays. Zero means unanchored.
	X, Y     int
	Duration time.Duration
}

type Notification struct {
	ID            string
	AchievementID string
	Kind          Kind
	Title         string
	Body          string
	X, Y          int
	ShownAt       time.Time
	ExpiresAt     time.Time
}

// Sink renders notifications. Calls arrive with the engine lock held and
// must not call back into the engine.
type Sink interface {
	Shown(n Notification)
	Expired(n Notification)
	OverlayChanged(o Overlay, active bool)
}

type live struct {
	n      Notification
	cancel sched.CancelFunc
}

// Dispatcher shows displays, expires them on schedule and caps the number of
// visible notifications, evicting the oldest first. It is not synchronized; the owner serializes
// access.
type Dispatcher struct {
	timers   *sched.Group
	sink     Sink
	maxLive  int
	live     []live
	overlays map[Overlay]bool
	onShow   func(Notification)
}

func NewDispatcher(timers *sched.Group, sink Sink, maxLive int) *Dispatcher {
	if maxLive <= 0 {
		maxLive = DefaultMaxLive
	}
	return &Dispatcher{timers: timers, sink: sink, maxLive: maxLive, overlays: map[Overlay]bool{}}
}

// OnShow registers a hook run after every Show.
func (d *Dispatcher) OnShow(fn func(Notification)) { d.onShow = fn }

func (d *Dispatcher) Show(disp Display) Notification {
	now := d.timers.Now()
	dur := disp.Duration
	if dur <= 0 {
		dur = DefaultDuration(disp.Kind)
	}
	n := Notification{
		ID:            uuid.NewString(),
		AchievementID: disp.AchievementID,
		Kind:          disp.Kind,
		Title:         disp.Title,
		Body:          disp.Body,
		X:             disp.X,
		Y:             disp.Y,
		ShownAt:       now,
		ExpiresAt:     now.Add(dur),
	}
	d.evictOldest()
	id := n.ID
	cancel := d.timers.After(dur, func() { d.expire(id) })
	d.live = append(d.live, live{n: n, cancel: cancel})
	if d.sink != nil {
		d.sink.Shown(n)
	}
	if d.onShow != nil {
		d.onShow(n)
	}
	return n
}

// evictOldest makes room for one more display, whatever its kind.
func (d *Dispatcher) evictOldest() {
	for len(d.live) > 0 && len(d.live) >= d.maxLive {
		d.remove(0)
	}
}

func (d *Dispatcher) expire(id string) {
	for i, l := range d.live {
		if l.n.ID == id {
			d.remove(i)
			return
		}
	}
}

func (d *Dispatcher) remove(i int) {
	l := d.live[i]
	d.live = append(d.live[:i], d.live[i+1:]...)
	l.cancel()
	if d.sink != nil {
		d.sink.Expired(l.n)
	}
}

// Dismiss removes a visible notification early. Unknown ids are ignored.
func (d *Dispatcher) Dismiss(id string) {
	d.expire(id)
}

// SetOverlay switches a persistent overlay. The sink is only told about
// actual changes.
func (d *Dispatcher) SetOverlay(o Overlay, active bool) {
	if d.overlays[o] == active {
		return
	}
	if active {
		d.overlays[o] = true
	} else {
		delete(d.overlays, o)
	}
	if d.sink != nil {
		d.sink.OverlayChanged(o, active)
	}
}

func (d *Dispatcher) Overlay(o Overlay) bool { return d.overlays[o] }

// Live returns visible notifications, oldest first.
func (d *Dispatcher) Live() []Notification {
	out := make([]Notification, 0, len(d.live))
	for _, l := range d.live {
		out = append(out, l.n)
	}
	return out
}

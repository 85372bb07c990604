package sched

import (
	"sync"
	"time"
)

// Group tracks callbacks scheduled on behalf of one owner. Every callback runs
// while holding the owner's lock, and is skipped once it was canceled or the
// group was closed, so a superseded or torn-down timer can never fire.
//
// After, the returned CancelFunc and Close must be called with the lock held.
type Group struct {
	clock  Scheduler
	lock   sync.Locker
	tasks  map[*task]struct{}
	closed bool
}

type task struct {
	timer    Timer
	canceled bool
}

func NewGroup(clock Scheduler, lock sync.Locker) *Group {
	if clock == nil {
		clock = NewReal()
	}
	return &Group{clock: clock, lock: lock, tasks: map[*task]struct{}{}}
}

func (g *Group) Now() time.Time { return g.clock.Now() }

func (g *Group) After(d time.Duration, fn func()) CancelFunc {
	if g.closed || fn == nil {
		return func() {}
	}
	t := &task{}
	g.tasks[t] = struct{}{}
	t.timer = g.clock.AfterFunc(d, func() {
		g.lock.Lock()
		defer g.lock.Unlock()
		if t.canceled || g.closed {
			return
		}
		delete(g.tasks, t)
		fn()
	})
	return func() { g.cancel(t) }
}

func (g *Group) cancel(t *task) {
	if t.canceled {
		return
	}
	t.canceled = true
	if t.timer != nil {
		t.timer.Stop()
	}
	delete(g.tasks, t)
}

// Len reports callbacks still waiting to run.
func (g *Group) Len() int { return len(g.tasks) }

func (g *Group) Close() {
	if g.closed {
		return
	}
	g.closed = true
	for t := range g.tasks {
		g.cancel(t)
	}
}

package sched

import (
	"sort"
	"sync"
	"time"
)

type Real struct{}

func NewReal() Real { return Real{} }

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Manual is a virtual clock. Callbacks only run from Advance, on the caller's
// goroutine, in due-time order.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	m       *Manual
	at      time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing every timer that comes due.
// Timers scheduled by a callback fire in the same call if they fall inside
// the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDueLocked(target)
		if next == nil {
			m.now = target
			m.compactLocked()
			m.mu.Unlock()
			return
		}
		next.fired = true
		m.now = next.at
		fn := next.fn
		m.mu.Unlock()

		if fn != nil {
			fn()
		}
	}
}

// Pending reports timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	live := make([]*manualTimer, 0, len(m.pending))
	for _, t := range m.pending {
		if t.stopped || t.fired || t.at.After(target) {
			continue
		}
		live = append(live, t)
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at.Equal(live[j].at) {
			return live[i].seq < live[j].seq
		}
		return live[i].at.Before(live[j].at)
	})
	return live[0]
}

func (m *Manual) compactLocked() {
	kept := m.pending[:0]
	for _, t := range m.pending {
		if t.stopped || t.fired {
			continue
		}
		kept = append(kept, t)
	}
	m.pending = kept
}

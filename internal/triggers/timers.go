package triggers

import (
	"time"

	"eastereggs/internal/input"
	"eastereggs/internal/notify"
	"eastereggs/internal/sched"
)

// Idle fires after a quiet period. Any activity clears the idle overlay and
// restarts the countdown.
type Idle struct {
	timeout time.Duration
	id      string
	cancel  sched.CancelFunc
	showing bool
}

func NewIdle(timeout time.Duration, id string) *Idle {
	return &Idle{timeout: timeout, id: id}
}

func (i *Idle) Name() string { return "idle" }

func (i *Idle) Kinds() []input.Kind {
	return []input.Kind{input.Activity, input.KeyDown, input.Click, input.Scroll, input.Motion}
}

func (i *Idle) Start(env Env) { i.arm(env) }

func (i *Idle) Handle(env Env, _ input.Signal) {
	if i.showing {
		i.showing = false
		env.SetOverlay(notify.OverlayIdle, false)
	}
	i.arm(env)
}

func (i *Idle) arm(env Env) {
	if i.cancel != nil {
		i.cancel()
	}
	i.cancel = env.After(i.timeout, func() {
		i.cancel = nil
		i.showing = true
		env.Unlock(i.id)
		env.SetOverlay(notify.OverlayIdle, true)
	})
}

// SessionTimer fires once after the page has been open for d, regardless of
// activity.
type SessionTimer struct {
	d     time.Duration
	id    string
	fired bool
}

func NewSessionTimer(d time.Duration, id string) *SessionTimer {
	return &SessionTimer{d: d, id: id}
}

func (s *SessionTimer) Name() string { return "session" }

func (s *SessionTimer) Kinds() []input.Kind { return nil }

func (s *SessionTimer) Handle(Env, input.Signal) {}

func (s *SessionTimer) Start(env Env) {
	if s.fired {
		return
	}
	env.After(s.d, func() {
		if s.fired {
			return
		}
		s.fired = true
		env.Unlock(s.id)
	})
}

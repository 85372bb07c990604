package triggers

import (
	"time"

	"eastereggs/internal/input"
	"eastereggs/internal/notify"
	"eastereggs/internal/sched"
)

// Env is what a matcher may do when it fires. Every call happens on the
// engine's serialized dispatch path.
type Env interface {
	Now() time.Time
	After(d time.Duration, fn func()) sched.CancelFunc
	Unlock(id string) bool
	Show(d notify.Display) notify.Notification
	Dismiss(notificationID string)
	SetOverlay(o notify.Overlay, active bool)
}

// Matcher is one independent detector. Handle must return promptly and must
// not block.
type Matcher interface {
	Name() string
	Kinds() []input.Kind
	Handle(env Env, sig input.Signal)
}

// Starter is implemented by matchers that arm timers when the engine starts.
type Starter interface {
	Start(env Env)
}

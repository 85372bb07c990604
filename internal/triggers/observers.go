package triggers

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"eastereggs/internal/input"
	"eastereggs/internal/notify"
)

// ScrollEnd unlocks once the viewport reaches the end of the content.
type ScrollEnd struct {
	epsilon int
	id      string
	latched bool
}

func NewScrollEnd(epsilon int, id string) *ScrollEnd {
	return &ScrollEnd{epsilon: epsilon, id: id}
}

func (s *ScrollEnd) Name() string { return "scroll-end" }

func (s *ScrollEnd) Kinds() []input.Kind { return []input.Kind{input.Scroll} }

func (s *ScrollEnd) Handle(env Env, sig input.Signal) {
	if s.latched || sig.ContentHeight <= 0 {
		return
	}
	if sig.ContentHeight-(sig.ScrollTop+sig.ViewHeight) > s.epsilon {
		return
	}
	s.latched = true
	env.Unlock(s.id)
}

// Resize shows the new size on every resize. Only the newest hint stays up.
type Resize struct {
	id   string
	last string
}

func NewResize(id string) *Resize { return &Resize{id: id} }

func (r *Resize) Name() string { return "resize" }

func (r *Resize) Kinds() []input.Kind { return []input.Kind{input.Resize} }

func (r *Resize) Handle(env Env, sig input.Signal) {
	if r.last != "" {
		env.Dismiss(r.last)
	}
	n := env.Show(notify.Display{
		Kind:  notify.KindResize,
		Title: fmt.Sprintf("%dx%d", sig.Width, sig.Height),
	})
	r.last = n.ID
	env.Unlock(r.id)
}

// Selection reacts to every selection of a sensible length.
type Selection struct {
	min, max int
	id       string
}

func NewSelection(minLen, maxLen int, id string) *Selection {
	return &Selection{min: minLen, max: maxLen, id: id}
}

func (s *Selection) Name() string { return "selection" }

func (s *Selection) Kinds() []input.Kind { return []input.Kind{input.MouseUp} }

func (s *Selection) Handle(env Env, sig input.Signal) {
	text := strings.TrimSpace(sig.Text)
	n := utf8.RuneCountInString(text)
	if n < s.min || n > s.max {
		return
	}
	env.Show(notify.Display{
		Kind:  notify.KindSelection,
		Title: fmt.Sprintf("Copied %d characters", n),
		Body:  text,
		X:     sig.X,
		Y:     sig.Y,
	})
	env.Unlock(s.id)
}

// Route mirrors one fragment value into an overlay.
type Route struct {
	fragment string
	overlay  notify.Overlay
	id       string
}

func NewRoute(fragment string, overlay notify.Overlay, id string) *Route {
	return &Route{fragment: fragment, overlay: overlay, id: id}
}

func (r *Route) Name() string { return "route" }

func (r *Route) Kinds() []input.Kind { return []input.Kind{input.Fragment} }

func (r *Route) Handle(env Env, sig input.Signal) {
	active := sig.Fragment == r.fragment
	env.SetOverlay(r.overlay, active)
	if active {
		env.Unlock(r.id)
	}
}

// NullPointer answers double-clicks on empty space with a stack trace.
type NullPointer struct {
	id string
}

func NewNullPointer(id string) *NullPointer { return &NullPointer{id: id} }

func (n *NullPointer) Name() string { return "null-pointer" }

func (n *NullPointer) Kinds() []input.Kind { return []input.Kind{input.DoubleClick} }

func (n *NullPointer) Handle(env Env, sig input.Signal) {
	if sig.Interactive {
		return
	}
	env.Show(notify.Display{
		Kind:  notify.KindNullPointer,
		Title: "java.lang.NullPointerException",
		Body:  "Cannot invoke \"Element.click()\" because \"target\" is null",
		X:     sig.X,
		Y:     sig.Y,
	})
	env.Unlock(n.id)
}

type ContextMenu struct {
	id string
}

func NewContextMenu(id string) *ContextMenu { return &ContextMenu{id: id} }

func (c *ContextMenu) Name() string { return "context-menu" }

func (c *ContextMenu) Kinds() []input.Kind { return []input.Kind{input.ContextMenu} }

func (c *ContextMenu) Handle(env Env, sig input.Signal) {
	env.Show(notify.Display{
		Kind:  notify.KindContextMenu,
		Title: "Nice try. Everything here is open source anyway.",
		X:     sig.X,
		Y:     sig.Y,
	})
	env.Unlock(c.id)
}

// Shake fires on strong device motion, at most once per cooldown.
type Shake struct {
	threshold float64
	cooldown  time.Duration
	id        string
	last      time.Time
}

func NewShake(threshold float64, cooldown time.Duration, id string) *Shake {
	return &Shake{threshold: threshold, cooldown: cooldown, id: id}
}

func (s *Shake) Name() string { return "shake" }

func (s *Shake) Kinds() []input.Kind { return []input.Kind{input.Motion} }

func (s *Shake) Handle(env Env, sig input.Signal) {
	if sig.Accel < s.threshold {
		return
	}
	if !s.last.IsZero() && sig.At.Sub(s.last) < s.cooldown {
		return
	}
	s.last = sig.At
	env.Unlock(s.id)
	env.Show(notify.Display{Kind: notify.KindShake, Title: "Whoa, easy there!"})
}

// External admits ids reported by other components.
type External struct{}

func (External) Name() string { return "external" }

func (External) Kinds() []input.Kind { return []input.Kind{input.External} }

func (External) Handle(env Env, sig input.Signal) {
	if sig.ID == "" {
		return
	}
	env.Unlock(sig.ID)
}

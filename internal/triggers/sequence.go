package triggers

import (
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
)

// KonamiCode is the classic ten-key sequence.
var KonamiCode = []string{
	input.KeyArrowUp, input.KeyArrowUp,
	input.KeyArrowDown, input.KeyArrowDown,
	input.KeyArrowLeft, input.KeyArrowRight,
	input.KeyArrowLeft, input.KeyArrowRight,
	"b", "a",
}

// Sequence matches an exact ordered run of keys. A wrong key restarts the
// run, counting itself if it is the first key of the sequence.
type Sequence struct {
	name    string
	keys    []string
	id      string
	display *notify.Display
	pos     int
}

func NewSequence(name string, keys []string, id string, display *notify.Display) *Sequence {
	return &Sequence{name: name, keys: append([]string(nil), keys...), id: id, display: display}
}

func (s *Sequence) Name() string { return s.name }

func (s *Sequence) Kinds() []input.Kind { return []input.Kind{input.KeyDown} }

// Position is the number of keys matched so far.
func (s *Sequence) Position() int { return s.pos }

func (s *Sequence) Handle(env Env, sig input.Signal) {
	if sig.InTextField || len(s.keys) == 0 || sig.Key == "" {
		return
	}
	if sig.Key != s.keys[s.pos] {
		s.pos = 0
		if sig.Key == s.keys[0] {
			s.pos = 1
		}
		return
	}
	s.pos++
	if s.pos < len(s.keys) {
		return
	}
	s.pos = 0
	env.Unlock(s.id)
	if s.display != nil {
		env.Show(*s.display)
	}
}

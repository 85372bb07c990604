package triggers

import (
	"time"

	"eastereggs/internal/input"
)

// Milestone pairs a running total with the achievement it unlocks.
type Milestone struct {
	Count int
	ID    string
}

// Milestones counts every click for the life of the session.
type Milestones struct {
	steps []Milestone
	total int
}

func NewMilestones(steps []Milestone) *Milestones {
	return &Milestones{steps: append([]Milestone(nil), steps...)}
}

func (m *Milestones) Name() string { return "click-milestones" }

func (m *Milestones) Kinds() []input.Kind { return []input.Kind{input.Click} }

func (m *Milestones) Total() int { return m.total }

func (m *Milestones) Handle(env Env, _ input.Signal) {
	m.total++
	for _, step := range m.steps {
		if m.total == step.Count {
			env.Unlock(step.ID)
		}
	}
}

// Burst fires when enough matching signals land inside a short window.
type Burst struct {
	name   string
	kind   input.Kind
	match  func(input.Signal) bool
	window *Window
	id     string
}

func NewBurst(name string, kind input.Kind, match func(input.Signal) bool, span time.Duration, threshold int, id string) *Burst {
	return &Burst{name: name, kind: kind, match: match, window: NewWindow(span, threshold), id: id}
}

func (b *Burst) Name() string { return b.name }

func (b *Burst) Kinds() []input.Kind { return []input.Kind{b.kind} }

func (b *Burst) Handle(env Env, sig input.Signal) {
	if b.match != nil && !b.match(sig) {
		return
	}
	if b.window.Hit(sig.At) {
		env.Unlock(b.id)
	}
}

// KeyIs matches key-down signals for one normalized key.
func KeyIs(key string) func(input.Signal) bool {
	return func(sig input.Signal) bool { return sig.Key == key }
}

// TargetIs matches pointer signals that landed on one named element.
func TargetIs(target string) func(input.Signal) bool {
	return func(sig input.Signal) bool { return sig.Target == target }
}

package hub

import (
	"fmt"
	"strings"

	"eastereggs/internal/achievements"
)

// Summarizer is satisfied by *achievements.Registry.
type Summarizer interface {
	Summary() achievements.Summary
}

type View struct {
	Unlocked int
	Total    int
	Percent  int
	Label    string
	Cards    []achievements.Card
	// Recent is the last achievement unlocked in this session, if any.
	Recent *achievements.Definition
}

// Model derives the achievement hub from the registry. The owner feeds it
// unlock events; it never mutates the registry.
type Model struct {
	source Summarizer
	recent *achievements.Definition
}

func New(source Summarizer) *Model {
	return &Model{source: source}
}

func (m *Model) Unlocked(def achievements.Definition) {
	d := def
	m.recent = &d
}

func (m *Model) View() View {
	s := m.source.Summary()
	v := View{
		Unlocked: s.Unlocked,
		Total:    s.Total,
		Label:    fmt.Sprintf("%d / %d", s.Unlocked, s.Total),
		Cards:    s.Cards,
	}
	if s.Total > 0 {
		v.Percent = s.Unlocked * 100 / s.Total
	}
	if m.recent != nil {
		d := *m.recent
		v.Recent = &d
	}
	return v
}

// Markdown renders the hub as a document for terminal rendering.
func Markdown(v View, ascii bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Achievements\n\n**%s** unlocked (%d%%)\n\n", v.Label, v.Percent)
	if v.Recent != nil {
		fmt.Fprintf(&b, "> Latest: %s %s\n\n", icon(v.Recent.Icon, v.Recent.Rarity, ascii), v.Recent.Name)
	}
	b.WriteString("| | Achievement | Rarity |\n| --- | --- | --- |\n")
	for _, c := range v.Cards {
		if c.Unlocked {
			fmt.Fprintf(&b, "| %s | **%s** | %s |\n", icon(c.Icon, c.Rarity, ascii), escape(c.Name), c.Rarity)
			continue
		}
		lock := "🔒"
		if ascii {
			lock = "[?]"
		}
		fmt.Fprintf(&b, "| %s | _%s_ | %s |\n", lock, escape(c.Hint), c.Rarity)
	}
	return b.String()
}

func icon(symbol string, r achievements.Rarity, ascii bool) string {
	if ascii || symbol == "" {
		return "[" + strings.ToUpper(r.String()[:1]) + "]"
	}
	return symbol
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

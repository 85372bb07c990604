package input

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "charm.land/bubbletea/v2"
)

// FromKeyPress converts a terminal key event into a normalized key name.
// ok is false for keys that carry no meaning to matchers.
func FromKeyPress(msg tea.KeyPressMsg) (name string, ok bool) {
	key := msg.Key()
	if key.Mod&(tea.ModCtrl|tea.ModAlt|tea.ModSuper) != 0 {
		return "", false
	}
	switch key.Code {
	case tea.KeyUp:
		return KeyArrowUp, true
	case tea.KeyDown:
		return KeyArrowDown, true
	case tea.KeyLeft:
		return KeyArrowLeft, true
	case tea.KeyRight:
		return KeyArrowRight, true
	case tea.KeyEsc:
		return KeyEscape, true
	case tea.KeyEnter:
		return KeyEnter, true
	case tea.KeyTab:
		return KeyTab, true
	case tea.KeyBackspace:
		return KeyBackspace, true
	case tea.KeySpace:
		return " ", true
	}
	if key.Text != "" && utf8.RuneCountInString(key.Text) == 1 {
		return strings.ToLower(key.Text), true
	}
	if key.Code != 0 && unicode.IsPrint(key.Code) {
		return strings.ToLower(string(key.Code)), true
	}
	return "", false
}

// NormalizeKey accepts browser-style names ("ArrowUp", "Escape", "A") as
// well as the normalized form.
func NormalizeKey(raw string) string {
	if utf8.RuneCountInString(raw) == 1 {
		return strings.ToLower(raw)
	}
	k := strings.ToLower(strings.TrimSpace(raw))
	switch k {
	case "up":
		return KeyArrowUp
	case "down":
		return KeyArrowDown
	case "left":
		return KeyArrowLeft
	case "right":
		return KeyArrowRight
	case "esc":
		return KeyEscape
	case "return":
		return KeyEnter
	case "space", "spacebar":
		return " "
	}
	return k
}

// IsPrintable reports whether a normalized key is a single character that
// keyword matchers should buffer.
func IsPrintable(k string) bool {
	return utf8.RuneCountInString(k) == 1
}

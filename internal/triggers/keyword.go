package triggers

import (
	"strings"
	"unicode/utf8"

	"eastereggs/internal/input"
	"eastereggs/internal/notify"
)

// Word is one typed trigger. Characters in Ignore are dropped from the
// typed buffer before comparing, so "git blame" matches "gitblame".
type Word struct {
	Text    string
	Ignore  string
	ID      string
	Display *notify.Display
}

// separatorSlack is extra buffer room for characters a Word ignores, so runs
// of spaces or dashes do not push the start of the word out of the buffer.
const separatorSlack = 32

// Greeting is a word answered in its own language.
type Greeting struct {
	Word     string
	Language string
	Response string
}

// Keyword watches the trailing characters typed outside text fields. Exact
// words are tested before greetings and the first match clears the buffer.
type Keyword struct {
	words      []Word
	greetings  []Greeting
	greetingID string
	size       int
	buf        []rune
}

func NewKeyword(words []Word, greetings []Greeting, greetingID string) *Keyword {
	k := &Keyword{words: words, greetings: greetings, greetingID: greetingID}
	for _, w := range words {
		n := utf8.RuneCountInString(w.Text)
		if w.Ignore != "" {
			n += separatorSlack
		}
		k.size = max(k.size, n)
	}
	for _, g := range greetings {
		k.size = max(k.size, utf8.RuneCountInString(g.Word))
	}
	return k
}

func (k *Keyword) Name() string { return "keyword" }

func (k *Keyword) Kinds() []input.Kind { return []input.Kind{input.KeyDown} }

// Buffer returns the characters currently held.
func (k *Keyword) Buffer() string { return string(k.buf) }

func (k *Keyword) Handle(env Env, sig input.Signal) {
	if sig.InTextField || !input.IsPrintable(sig.Key) || k.size == 0 {
		return
	}
	r, _ := utf8.DecodeRuneInString(sig.Key)
	k.buf = append(k.buf, r)
	if len(k.buf) > k.size {
		k.buf = append(k.buf[:0], k.buf[len(k.buf)-k.size:]...)
	}
	typed := string(k.buf)

	for _, w := range k.words {
		if !strings.HasSuffix(strip(typed, w.Ignore), w.Text) {
			continue
		}
		k.buf = k.buf[:0]
		env.Unlock(w.ID)
		if w.Display != nil {
			env.Show(*w.Display)
		}
		return
	}
	for _, g := range k.greetings {
		if !strings.HasSuffix(typed, g.Word) {
			continue
		}
		k.buf = k.buf[:0]
		env.Unlock(k.greetingID)
		env.Show(notify.Display{Kind: notify.KindGreeting, Title: g.Language, Body: g.Response})
		return
	}
}

func strip(s, chars string) string {
	if chars == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}

package triggers

import (
	"time"

	"eastereggs/internal/achievements"
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
)

const (
	DefaultIdleTimeout      = 60 * time.Second
	DefaultSessionMilestone = 5 * time.Minute
	APIFragment             = "#/api"
	ShakeThreshold          = 25.0
	scrollEpsilon           = 2
)

// Greetings answered by the polyglot trigger, in test order.
var Greetings = []Greeting{
	{Word: "hello", Language: "English", Response: "Hello, World!"},
	{Word: "hola", Language: "Spanish", Response: "¡Hola, Mundo!"},
	{Word: "bonjour", Language: "French", Response: "Bonjour le monde !"},
	{Word: "ciao", Language: "Italian", Response: "Ciao, mondo!"},
	{Word: "hallo", Language: "German", Response: "Hallo, Welt!"},
	{Word: "namaste", Language: "Hindi", Response: "नमस्ते दुनिया"},
	{Word: "konnichiwa", Language: "Japanese", Response: "こんにちは世界"},
	{Word: "annyeong", Language: "Korean", Response: "안녕, 세상"},
	{Word: "privet", Language: "Russian", Response: "Привет, мир!"},
	{Word: "merhaba", Language: "Turkish", Response: "Merhaba, Dünya!"},
}

// Words are the exact-word triggers, tested before greetings.
func Words() []Word {
	return []Word{
		{Text: "java", ID: achievements.IDJava, Display: &notify.Display{
			Kind:  notify.KindJava,
			Title: "public static void main(String[] args)",
			Body:  "System.out.println(\"Hello World!\");",
		}},
		{Text: "sudo", ID: achievements.IDSudo},
		{Text: "gitblame", Ignore: " \t", ID: achievements.IDGitBlame},
		{Text: "rmrf", Ignore: " \t-", ID: achievements.IDRmRf},
		{Text: "404", ID: achievements.IDNotFound},
	}
}

type Settings struct {
	IdleTimeout      time.Duration
	SessionMilestone time.Duration
}

// Default builds the full matcher set for the built-in catalog.
func Default(s Settings) []Matcher {
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.SessionMilestone <= 0 {
		s.SessionMilestone = DefaultSessionMilestone
	}
	return []Matcher{
		NewKeyword(Words(), Greetings, achievements.IDPolyglot),
		NewSequence("konami", KonamiCode, achievements.IDKonami, &notify.Display{
			Kind:  notify.KindKonami,
			Title: "+30 lives",
			Body:  "Cheat code accepted.",
		}),
		NewIdle(s.IdleTimeout, achievements.IDIdle),
		NewSessionTimer(s.SessionMilestone, achievements.IDMarathon),
		NewMilestones([]Milestone{
			{Count: 10, ID: achievements.IDClicks10},
			{Count: 50, ID: achievements.IDClicks50},
			{Count: 100, ID: achievements.IDClicks100},
		}),
		NewBurst("escape", input.KeyDown, KeyIs(input.KeyEscape), 1000*time.Millisecond, 3, achievements.IDEscape),
		NewBurst("avatar", input.Click, TargetIs(input.TargetAvatar), 1000*time.Millisecond, 3, achievements.IDAvatarPoke),
		NewBurst("red-dot", input.Click, TargetIs(input.TargetRedDot), 1500*time.Millisecond, 3, achievements.IDRedDot),
		NewBurst("name", input.Click, TargetIs(input.TargetName), 600*time.Millisecond, 3, achievements.IDNameTriple),
		NewScrollEnd(scrollEpsilon, achievements.IDRockBottom),
		NewResize(achievements.IDShapeShifter),
		NewSelection(3, 99, achievements.IDHighlighter),
		NewRoute(APIFragment, notify.OverlayAPI, achievements.IDSecretAPI),
		NewNullPointer(achievements.IDNullPointer),
		NewContextMenu(achievements.IDRightClick),
		NewShake(ShakeThreshold, time.Second, achievements.IDEarthquake),
		External{},
	}
}

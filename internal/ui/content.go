package ui

// DefaultPage is the portfolio shown when no other content is configured.
func DefaultPage() Page {
	return Page{
		Name:    "Zach K.",
		Tagline: "software developer, terminal enthusiast",
		About: "I like building software that is useful and a little bit fun. " +
			"Most of my projects start as a small idea and turn into an excuse to learn how " +
			"something works underneath: a protocol, a storage engine, a ranking function. " +
			"Poke around. Not everything on this page is what it seems.",
		Skills: []string{"Go", "TypeScript", "Python", "SQL", "Linux", "Docker", "Bubble Tea"},
		Projects: []Project{
			{
				ID:      "inbox-tui",
				Title:   "inbox-tui",
				Stack:   "Go, IMAP, Bubble Tea",
				Summary: "A keyboard-driven email client for the terminal with threaded views and offline search.",
				Image: []string{
					"+------------------+",
					"| > re: lunch?     |",
					"|   invoice #42    |",
					"|   standup notes  |",
					"+------------------+",
				},
			},
			{
				ID:      "waveform",
				Title:   "waveform",
				Stack:   "Go, PortAudio",
				Summary: "A terminal music player that streams playlists and draws a live spectrum.",
				Image: []string{
					"   |   |  |        ",
					" | || ||| || |  |  ",
					"|||||||||||||||||| ",
					" ||| ||  |||| |||  ",
					"  |   |    |   |   ",
				},
			},
			{
				ID:      "recipe-rank",
				Title:   "recipe-rank",
				Stack:   "Python, scikit-learn, Flask",
				Summary: "A recommendation web app that ranks recipes by TF-IDF similarity to what is in your fridge.",
				Image: []string{
					"  .-------------.  ",
					"  | eggs   0.91 |  ",
					"  | rice   0.74 |  ",
					"  | leek   0.38 |  ",
					"  '-------------'  ",
				},
			},
			{
				ID:      "tinykv",
				Title:   "tinykv",
				Stack:   "Go, Raft",
				Summary: "A toy replicated key/value store built to understand leader election and log compaction.",
				Image: []string{
					"   [L]----[F]     ",
					"    | \\    |      ",
					"    |  \\   |      ",
					"   [F]----[F]     ",
					"                  ",
				},
			},
		},
		Contact: []Link{
			{Label: "github", URL: "https://github.com/example"},
			{Label: "email", URL: "mailto:hello@example.com"},
		},
	}
}

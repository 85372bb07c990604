package app

import "eastereggs/internal/ui"

// Page is the host surface the app drives. *ui.Root satisfies it; tests use
// a headless fake.
type Page interface {
	ui.View
}

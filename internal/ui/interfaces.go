package ui

import (
	"eastereggs/internal/hub"
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
)

// Controller receives page events. Calls are delivered in order on a single
// worker goroutine, never on the render loop.
type Controller interface {
	OnSignal(sig input.Signal)
	OnOpenProject(id string)
	OnCloseProject()
	OnProjectImageClick()
	OnQuit()
	// Snapshot is called from View and must not block for long.
	Snapshot() Snapshot
}

type View interface {
	Run() error
	Stop()
	// Close releases the page's background worker. The page cannot run again.
	Close()
	SetController(Controller)
	RequestDraw()
	FlashStatus(msg string)
	notify.Sink
}

// Snapshot is the engine state a frame is drawn from.
type Snapshot struct {
	Hub           hub.View
	Notifications []notify.Notification
	IdleOverlay   bool
	APIOverlay    bool
}

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutCompact
	LayoutTooSmall
)

type Page struct {
	Name     string
	Tagline  string
	About    string
	Skills   []string
	Projects []Project
	Contact  []Link
}

type Project struct {
	ID      string
	Title   string
	Stack   string
	Summary string
	// Image is a small piece of line art shown in the detail viewer.
	Image []string
}

type Link struct {
	Label string
	URL   string
}

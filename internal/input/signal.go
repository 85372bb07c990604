package input

import "time"

type Kind int

const (
	KeyDown Kind = iota
	Click
	DoubleClick
	ContextMenu
	MouseUp
	Resize
	Scroll
	Activity
	Motion
	Fragment
	External
)

var kindNames = map[Kind]string{
	KeyDown:     "keydown",
	Click:       "click",
	DoubleClick: "dblclick",
	ContextMenu: "contextmenu",
	MouseUp:     "mouseup",
	Resize:      "resize",
	Scroll:      "scroll",
	Activity:    "activity",
	Motion:      "motion",
	Fragment:    "fragment",
	External:    "external",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Page targets a pointer signal can land on.
const (
	TargetNone    = ""
	TargetAvatar  = "avatar"
	TargetName    = "name"
	TargetRedDot  = "red-dot"
	TargetProject = "project"
	TargetImage   = "image"
	TargetLink    = "link"
	TargetField   = "field"
	TargetButton  = "button"
)

// Normalized key names. Printable keys are reported as their lowercase
// character.
const (
	KeyArrowUp    = "arrowup"
	KeyArrowDown  = "arrowdown"
	KeyArrowLeft  = "arrowleft"
	KeyArrowRight = "arrowright"
	KeyEscape     = "escape"
	KeyEnter      = "enter"
	KeyTab        = "tab"
	KeyBackspace  = "backspace"
)

// Signal is one normalized input event. Only the fields relevant to Kind are
// populated.
type Signal struct {
	Kind Kind
	At   time.Time

	// KeyDown
	Key         string
	InTextField bool

	// pointer kinds
	Target      string
	Interactive bool
	X, Y        int

	// Resize
	Width, Height int

	// Scroll
	ScrollTop     int
	ViewHeight    int
	ContentHeight int

	// MouseUp selection
	Text string

	// Motion, peak acceleration magnitude
	Accel float64

	// Fragment
	Fragment string

	// External trigger id
	ID string
}

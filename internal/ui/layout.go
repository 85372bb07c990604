package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

func DetermineLayoutMode(cols, rows int) LayoutMode {
	if cols < 60 || rows < 16 {
		return LayoutTooSmall
	}
	if cols >= 110 && rows >= 30 {
		return LayoutWide
	}
	return LayoutCompact
}

// segment is a run of text on one screen row. Pointer events landing on it
// report its target.
type segment struct {
	text        string
	style       lipgloss.Style
	target      string
	ref         string
	interactive bool
}

type line []segment

func plainSeg(s string) segment {
	return segment{text: s, style: lipgloss.NewStyle()}
}

func (l line) plain() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(ansi.Strip(s.text))
	}
	return b.String()
}

func (l line) render() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.style.Render(s.text))
	}
	return b.String()
}

// hit returns the segment covering column x.
func (l line) hit(x int) (segment, bool) {
	col := 0
	for _, s := range l {
		w := ansi.StringWidth(s.text)
		if x >= col && x < col+w {
			return s, true
		}
		col += w
	}
	return segment{}, false
}

func (l line) indent(n int) line {
	if n <= 0 {
		return l
	}
	return append(line{plainSeg(strings.Repeat(" ", n))}, l...)
}

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return r.w > 0 && r.h > 0 && x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// pageGeometry returns the left margin and usable width for page content.
func pageGeometry(mode LayoutMode, cols int) (margin, width int) {
	switch mode {
	case LayoutWide:
		width = min(96, cols-4)
		return (cols - width) / 2, width
	default:
		return 1, max(10, cols-2)
	}
}

package ui

import "testing"

func TestDetermineLayoutMode(t *testing.T) {
	if got := DetermineLayoutMode(140, 32); got != LayoutWide {
		t.Fatalf("expected wide, got %v", got)
	}
	if got := DetermineLayoutMode(100, 30); got != LayoutCompact {
		t.Fatalf("expected compact, got %v", got)
	}
	if got := DetermineLayoutMode(50, 30); got != LayoutTooSmall {
		t.Fatalf("expected too-small, got %v", got)
	}
	if got := DetermineLayoutMode(100, 12); got != LayoutTooSmall {
		t.Fatalf("expected too-small by height, got %v", got)
	}
}

func TestLineHitUsesDisplayColumns(t *testing.T) {
	l := line{
		plainSeg("ab"),
		{text: "name", target: "name"},
		plainSeg(" "),
		{text: "go", target: "link", interactive: true},
	}
	tests := []struct {
		x      int
		target string
		ok     bool
	}{
		{x: 0, target: "", ok: true},
		{x: 2, target: "name", ok: true},
		{x: 5, target: "name", ok: true},
		{x: 6, target: "", ok: true},
		{x: 8, target: "link", ok: true},
		{x: 9, ok: false},
	}
	for _, tc := range tests {
		seg, ok := l.hit(tc.x)
		if ok != tc.ok || seg.target != tc.target {
			t.Fatalf("x=%d: got (%q,%v) want (%q,%v)", tc.x, seg.target, ok, tc.target, tc.ok)
		}
	}
	if l.plain() != "abname go" {
		t.Fatalf("unexpected plain text %q", l.plain())
	}
}

func TestRectContains(t *testing.T) {
	r := rect{x: 2, y: 3, w: 4, h: 2}
	if !r.contains(2, 3) || !r.contains(5, 4) {
		t.Fatalf("expected corners inside")
	}
	if r.contains(6, 3) || r.contains(2, 5) || (rect{}).contains(0, 0) {
		t.Fatalf("expected outside points rejected")
	}
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"eastereggs/internal/hub"
	"eastereggs/internal/input"
	"eastereggs/internal/notify"
)

const (
	hubButtonRef   = "hub"
	closeButtonRef = "close"
)

// screenLines lays out one full frame: header, the visible slice of the page
// and the status bar. Rendering and hit testing both read it.
func (r *Root) screenLines(snap Snapshot) []line {
	margin, _ := pageGeometry(r.layout, r.cols)
	out := make([]line, 0, r.rows)
	out = append(out, r.headerLine())
	body := r.pageLines()
	for i := 0; i < r.bodyHeight(); i++ {
		idx := r.scroll + i
		if idx < len(body) {
			out = append(out, body[idx].indent(margin))
			continue
		}
		out = append(out, line{})
	}
	return append(out, r.statusLine(snap))
}

func (r *Root) heading(title string) line {
	return line{{text: title, style: r.theme.Heading}}
}

func (r *Root) pageLines() []line {
	_, width := pageGeometry(r.layout, r.cols)
	t := r.theme
	avatar := []string{" .---. ", "( o o )", " \\ ~ / "}

	out := []line{
		{{text: avatar[0], style: t.Avatar, target: input.TargetAvatar}},
		{
			{text: avatar[1], style: t.Avatar, target: input.TargetAvatar},
			plainSeg("  "),
			{text: r.page.Name, style: t.Name, target: input.TargetName},
		},
		{
			{text: avatar[2], style: t.Avatar, target: input.TargetAvatar},
			plainSeg("  "),
			{text: r.page.Tagline, style: t.Muted},
		},
		{},
		r.heading("About"),
	}
	for _, l := range strings.Split(ansi.Wordwrap(r.page.About, width, ""), "\n") {
		out = append(out, line{{text: l, style: t.PanelBody}})
	}

	sep := " · "
	if r.ascii {
		sep = " / "
	}
	out = append(out, line{}, r.heading("Skills"))
	for _, l := range strings.Split(ansi.Wordwrap(strings.Join(r.page.Skills, sep), width, ""), "\n") {
		out = append(out, line{{text: l, style: t.PanelBody}})
	}

	out = append(out, line{}, r.heading("Projects"))
	for i, p := range r.page.Projects {
		marker, style := "  ", t.PanelBody
		if i == r.selected {
			marker, style = "> ", t.Selected
		}
		out = append(out, line{
			plainSeg(marker),
			{text: p.Title, style: style, target: input.TargetProject, ref: p.ID, interactive: true},
			{text: "  " + p.Stack, style: t.Muted},
		})
		for _, l := range strings.Split(ansi.Wordwrap(p.Summary, max(10, width-4), ""), "\n") {
			out = append(out, line{plainSeg("    "), {text: l, style: t.Muted}})
		}
	}

	out = append(out, line{}, r.heading("Contact"))
	for _, l := range r.page.Contact {
		out = append(out, line{
			plainSeg("  "),
			{text: l.Label, style: t.Muted},
			plainSeg(": "),
			{text: l.URL, style: t.Link, target: input.TargetLink, ref: l.URL, interactive: true},
		})
	}
	return append(out, line{}, line{{text: "built with Go and Bubble Tea", style: t.Muted}})
}

func (r *Root) headerLine() line {
	t := r.theme
	dot := "●"
	if r.ascii {
		dot = "o"
	}
	text, style := r.fragment, t.Field
	if r.fieldFocus {
		text, style = string(r.field)+"_", t.FieldFocus
	}
	fieldW := min(40, max(12, r.cols/3))
	l := line{
		{text: " ", style: t.Header},
		{text: dot, style: t.DotRed, target: input.TargetRedDot, interactive: true},
		{text: " ", style: t.Header},
		{text: dot, style: t.DotYellow, target: input.TargetButton, ref: closeButtonRef, interactive: true},
		{text: " ", style: t.Header},
		{text: dot, style: t.DotGreen, target: input.TargetButton, interactive: true},
		{text: "  ", style: t.Header},
		{text: padRune(" "+text, fieldW), style: style, target: input.TargetField, interactive: true},
	}
	used := ansi.StringWidth(l.plain())
	return append(l, segment{text: strings.Repeat(" ", max(0, r.cols-used)), style: t.Header})
}

func (r *Root) statusLine(snap Snapshot) line {
	t := r.theme
	label := "Achievements"
	if snap.Hub.Label != "" {
		label += " " + snap.Hub.Label
	}
	right := segment{text: " " + label + " ", style: t.Accent, target: input.TargetButton, ref: hubButtonRef, interactive: true}

	var recent segment
	if d := snap.Hub.Recent; d != nil {
		style, ok := t.Rarity[d.Rarity]
		if !ok {
			style = t.Status
		}
		recent = segment{text: " " + d.Name + " ", style: style}
	}

	room := max(1, r.cols-ansi.StringWidth(right.text)-ansi.StringWidth(recent.text)-2)
	r.help.SetWidth(room)
	left := r.help.View(r.keymap)
	if r.statusFlash != "" {
		left += " | " + r.statusFlash
	}
	left = ansi.Truncate(left, room, "…")
	pad := max(0, r.cols-1-ansi.StringWidth(left)-ansi.StringWidth(recent.text)-ansi.StringWidth(right.text))
	return line{
		{text: " " + left, style: t.Status},
		{text: strings.Repeat(" ", pad), style: t.Status},
		recent,
		right,
	}
}

func (r *Root) renderTooSmall() string {
	msg := fmt.Sprintf("Window too small (%dx%d). Resize to at least 60x16.", r.cols, r.rows)
	return r.theme.Fail.Render(trimForWidth(msg, max(1, r.cols)))
}

func (r *Root) renderOverlays(base string, snap Snapshot) string {
	out := base
	if snap.APIOverlay {
		out = composeOverlay(out, r.apiPanel(), r.cols, r.rows)
	}
	if g, ok := r.viewerGeometry(); ok {
		panel := r.drawPanel(g.project.Title, g.lines, g.panel.w, g.panel.h)
		out = composeOverlayAt(out, panel, r.cols, r.rows, g.panel.y, g.panel.x)
	}
	if r.hubPos > 0.01 {
		rc := r.hubRect()
		y := rc.y + int(float64(rc.h)*(1-r.hubPos))
		out = composeOverlayAt(out, r.hubPanel(snap.Hub, rc), r.cols, r.rows, y, rc.x)
	}
	if snap.IdleOverlay {
		out = composeOverlay(out, r.idlePanel(), r.cols, r.rows)
	}
	return r.composeToasts(out, snap.Notifications)
}

type viewerGeom struct {
	project Project
	panel   rect
	image   rect
	lines   []string
}

// viewerGeometry places the project detail panel. ok is false when no
// project is open.
func (r *Root) viewerGeometry() (viewerGeom, bool) {
	if r.project == "" {
		return viewerGeom{}, false
	}
	var p Project
	found := false
	for _, candidate := range r.page.Projects {
		if candidate.ID == r.project {
			p, found = candidate, true
			break
		}
	}
	if !found {
		return viewerGeom{}, false
	}

	w := min(r.cols-4, 64)
	innerW := w - 2
	lines := []string{"", " " + p.Stack, ""}
	for _, l := range strings.Split(ansi.Wordwrap(p.Summary, max(10, innerW-2), ""), "\n") {
		lines = append(lines, " "+l)
	}
	lines = append(lines, "")
	imgStart := len(lines)
	for _, l := range p.Image {
		lines = append(lines, " "+l)
	}
	lines = append(lines, "", " F3 zoom   Esc close")

	h := min(len(lines)+2, r.rows-2)
	x := max(0, (r.cols-w)/2)
	y := max(1, (r.rows-h)/2)
	imgH := min(len(p.Image), max(0, h-2-imgStart))
	return viewerGeom{
		project: p,
		panel:   rect{x: x, y: y, w: w, h: h},
		image:   rect{x: x + 1, y: y + 1 + imgStart, w: innerW, h: imgH},
		lines:   lines,
	}, true
}

func (r *Root) hubRect() rect {
	w := min(r.cols-4, 84)
	h := max(3, r.rows-2)
	return rect{x: max(0, (r.cols-w)/2), y: 1, w: w, h: h}
}

func (r *Root) hubPanel(v hub.View, rc rect) string {
	lines := []string{"", " " + r.meterBar(v, rc.w-4), ""}
	for _, l := range strings.Split(r.hubMarkdown(v), "\n") {
		lines = append(lines, " "+ansi.Strip(l))
	}
	return r.drawPanel("Achievements", lines, rc.w, rc.h)
}

func (r *Root) meterBar(v hub.View, width int) string {
	m := r.meter
	m.SetWidth(max(8, width))
	return m.ViewAs(float64(v.Percent) / 100)
}

// hubMarkdown renders the hub through glamour, caching by content.
func (r *Root) hubMarkdown(v hub.View) string {
	recent := ""
	if v.Recent != nil {
		recent = v.Recent.ID
	}
	key := fmt.Sprintf("%s|%s|%v", v.Label, recent, r.ascii)
	if r.hubCache.key == key {
		return r.hubCache.text
	}
	md := hub.Markdown(v, r.ascii)
	text := md
	if r.markdown != nil {
		if out, err := r.markdown.Render(md); err == nil {
			text = out
		}
	}
	r.hubCache.key, r.hubCache.text = key, text
	return text
}

func (r *Root) idlePanel() string {
	icon := strings.TrimSpace(r.idleSpin.View())
	if r.ascii {
		icon = "zzz"
	}
	lines := []string{
		"",
		" " + icon + "  still there?",
		" move the mouse or press a key",
		"",
	}
	return r.drawPanel("idle", lines, 36, len(lines)+2)
}

func (r *Root) apiPanel() string {
	lines := []string{
		"",
		" GET  /api/achievements       list what you found",
		" POST /api/achievements/:id   nice try",
		" GET  /api/secrets            403 Forbidden",
		"",
		" Leave #/api to close this panel.",
		"",
	}
	return r.drawPanel("API", lines, min(r.cols-4, 56), len(lines)+2)
}

func (r *Root) composeToasts(base string, notes []notify.Notification) string {
	row := 1
	for _, n := range notes {
		lines := r.toastLines(n)
		w := 4
		for _, l := range lines {
			w = max(w, len([]rune(l))+2)
		}
		w = min(w, max(4, r.cols-2))
		h := len(lines) + 2
		panel := r.drawPanel(toastTitle(n.Kind), lines, w, h)
		if n.X != 0 || n.Y != 0 {
			base = composeOverlayAt(base, panel, r.cols, r.rows, n.Y, n.X)
			continue
		}
		base = composeOverlayAt(base, panel, r.cols, r.rows, row, max(0, r.cols-w-1))
		row += h
	}
	return base
}

func (r *Root) toastLines(n notify.Notification) []string {
	var lines []string
	for _, s := range []string{n.Title, n.Body} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		for _, l := range strings.Split(ansi.Wordwrap(s, 40, ""), "\n") {
			lines = append(lines, " "+l+" ")
		}
	}
	if len(lines) == 0 {
		lines = []string{" "}
	}
	return lines
}

func toastTitle(kind notify.Kind) string {
	switch kind {
	case notify.KindAchievement:
		return "Achievement unlocked"
	case notify.KindNullPointer:
		return "Exception"
	default:
		return ""
	}
}

func (r *Root) hitTest(x, y int) segment {
	if r.hubOpen && r.hubRect().contains(x, y) {
		return segment{}
	}
	if g, ok := r.viewerGeometry(); ok {
		if g.image.contains(x, y) {
			return segment{target: input.TargetImage, ref: g.project.ID, interactive: true}
		}
		if g.panel.contains(x, y) {
			return segment{}
		}
	}
	if r.layout == LayoutTooSmall {
		return segment{}
	}
	lines := r.screenLines(r.snapshot())
	if y < 0 || y >= len(lines) {
		return segment{}
	}
	seg, _ := lines[y].hit(x)
	return seg
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		runes := []rune(top)
		for i, ch := range []rune(" " + title + " ") {
			pos := 1 + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		text := ""
		if row < len(lines) {
			text = lines[row]
		}
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(padRune(text, innerW))+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

func composeOverlay(base, overlay string, cols, rows int) string {
	lines := strings.Split(strings.TrimRight(ansi.Strip(overlay), "\n"), "\n")
	ow := 1
	for _, l := range lines {
		ow = max(ow, len([]rune(l)))
	}
	return composeOverlayAt(base, overlay, cols, rows, (rows-min(len(lines), rows))/2, max(0, (cols-min(ow, cols))/2))
}

func composeOverlayAt(base, overlay string, cols, rows, startRow, startCol int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	baseLines := strings.Split(ansi.Strip(base), "\n")
	if len(baseLines) < rows {
		baseLines = append(baseLines, make([]string, rows-len(baseLines))...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(ansi.Strip(overlay), "\n"), "\n")
	startRow = max(0, startRow)
	startCol = max(0, startCol)
	for i, l := range overlayLines {
		row := startRow + i
		if row >= rows {
			break
		}
		dst := []rune(baseLines[row])
		for j, ch := range []rune(l) {
			if startCol+j >= len(dst) {
				break
			}
			dst[startCol+j] = ch
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

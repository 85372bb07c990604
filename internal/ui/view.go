package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"

	"eastereggs/internal/input"
	"eastereggs/internal/notify"
)

const (
	doubleClickWindow = 400 * time.Millisecond
	activityThrottle  = 250 * time.Millisecond
	wheelStep         = 3
)

type applyMsg struct {
	fn func(*Root)
}

type drawMsg struct{}
type clockMsg time.Time
type animateMsg time.Time

type pageKeyMap struct {
	Hub    key.Binding
	Zoom   key.Binding
	Field  key.Binding
	Open   key.Binding
	Close  key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func (k pageKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Close, k.Field, k.Hub, k.Zoom, k.Quit}
}

func (k pageKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Open, k.Close, k.Field}, {k.Hub, k.Zoom, k.Scroll, k.Quit}}
}

type point struct {
	x, y int
}

type clickMark struct {
	at  time.Time
	pos point
	ok  bool
}

type Root struct {
	theme Theme
	ascii bool
	debug bool
	page  Page
	now   func() time.Time
	ctrl  Controller

	qmu       sync.RWMutex
	queue     chan func()
	queueDone chan struct{}
	queueShut bool

	mu      sync.Mutex
	program *tea.Program
	running bool

	layout LayoutMode
	cols   int
	rows   int
	sized  bool

	scroll     int
	selected   int
	project    string
	hubOpen    bool
	fieldFocus bool
	field      []rune
	fragment   string

	lastClick    clickMark
	lastActivity time.Time
	selecting    bool
	selAnchor    point
	selEnd       point

	statusFlash string

	help     help.Model
	keymap   pageKeyMap
	meter    progress.Model
	idleSpin spinner.Model
	markdown *glamour.TermRenderer
	hubCache struct {
		key  string
		text string
	}
	logger *clog.Logger
	hubPos float64
	hubVel float64
	spring harmonica.Spring

	drawPending atomic.Bool

	lastInputEvent string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
	Page         *Page
	// Now defaults to time.Now. Tests substitute it to drive double clicks.
	Now func() time.Time
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "eastereggs-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(78),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	theme := ThemeForVariant(opts.StyleVariant)
	meter := progress.New(
		progress.WithWidth(24),
		progress.WithColors(lipgloss.Color("#5EC2FF"), lipgloss.Color("#79E6A6"), lipgloss.Color("#F2D16B")),
		progress.WithScaled(true),
	)
	idleSpin := spinner.New(
		spinner.WithSpinner(spinner.Moon),
		spinner.WithStyle(theme.Accent),
	)
	page := DefaultPage()
	if opts.Page != nil {
		page = *opts.Page
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r := &Root{
		theme:     theme,
		ascii:     opts.ASCIIOnly,
		debug:     opts.Debug,
		page:      page,
		now:       now,
		queue:     make(chan func(), 256),
		queueDone: make(chan struct{}),
		layout:    LayoutWide,
		cols:      120,
		rows:      32,
		fragment:  "#/",
		help:      h,
		meter:     meter,
		idleSpin:  idleSpin,
		markdown:  renderer,
		logger:    logger,
		spring:    harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8),
	}
	r.keymap = pageKeyMap{
		Hub:    key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "Achievements")),
		Zoom:   key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "Zoom")),
		Field:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Address")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Open")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Close")),
		Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("PgUp/PgDn", "Scroll")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("Ctrl+C", "Quit")),
	}
	go r.work()
	return r
}

// work runs controller calls one at a time, in the order the UI saw them.
func (r *Root) work() {
	defer close(r.queueDone)
	for fn := range r.queue {
		fn()
	}
}

// Close stops the page and ends the controller worker once queued calls
// have run. Later controller calls are dropped.
func (r *Root) Close() {
	r.Stop()
	r.qmu.Lock()
	if !r.queueShut {
		r.queueShut = true
		close(r.queue)
	}
	r.qmu.Unlock()
	<-r.queueDone
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(clockTickCmd(), spinnerTickCmd(r.idleSpin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return r.handleResize(msg)
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case drawMsg:
		r.drawPending.Store(false)
		return r, nil
	case clockMsg:
		return r, clockTickCmd()
	case animateMsg:
		target := 0.0
		if r.hubOpen {
			target = 1.0
		}
		r.hubPos, r.hubVel = r.spring.Update(r.hubPos, r.hubVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		r.hubPos, r.hubVel = target, 0
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.idleSpin, cmd = r.idleSpin.Update(msg)
		return r, cmd
	case tea.MouseClickMsg:
		return r.handleMouseClick(msg)
	case tea.MouseReleaseMsg:
		return r.handleMouseRelease(msg)
	case tea.MouseMotionMsg:
		return r.handleMouseMotion(msg)
	case tea.MouseWheelMsg:
		return r.handleMouseWheel(msg)
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	case tea.PasteMsg:
		r.handlePaste(msg.Content)
		return r, nil
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			msg := "UI recovered from a rendering panic. Check logs."
			view = tea.NewView(r.theme.Fail.Width(width).Render(trimForWidth(msg, max(1, width-1))))
		}
	}()

	if r.cols < 1 {
		r.cols = 120
	}
	if r.rows < 1 {
		r.rows = 32
	}

	snap := r.snapshot()
	var base string
	if r.layout == LayoutTooSmall {
		base = r.renderTooSmall()
	} else {
		lines := r.screenLines(snap)
		rendered := make([]string, len(lines))
		for i, l := range lines {
			rendered[i] = l.render()
		}
		base = strings.Join(rendered, "\n")
		base = r.renderOverlays(base, snap)
	}

	v := tea.NewView(base)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	return v
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(v *Root) { v.statusFlash = msg })
}

// Shown, Expired and OverlayChanged are called with the engine lock held.
// They only schedule a redraw; the next frame pulls a fresh snapshot.
func (r *Root) Shown(n notify.Notification) {
	r.logger.Debug("notification.shown", "kind", n.Kind, "id", n.ID)
	r.RequestDraw()
}

func (r *Root) Expired(n notify.Notification) {
	r.logger.Debug("notification.expired", "kind", n.Kind, "id", n.ID)
	r.RequestDraw()
}

func (r *Root) OverlayChanged(o notify.Overlay, active bool) {
	r.logger.Debug("overlay.changed", "overlay", o, "active", active)
	r.RequestDraw()
}

func (r *Root) RequestDraw() {
	r.mu.Lock()
	p := r.program
	running := r.running
	r.mu.Unlock()
	if !running || p == nil {
		return
	}
	if !r.drawPending.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(16*time.Millisecond, func() {
		r.mu.Lock()
		p := r.program
		running := r.running
		r.mu.Unlock()
		if !running || p == nil {
			r.drawPending.Store(false)
			return
		}
		p.Send(drawMsg{})
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	r.qmu.RLock()
	defer r.qmu.RUnlock()
	if r.queueShut {
		return
	}
	r.queue <- func() { fn(ctrl) }
}

func (r *Root) emit(sig input.Signal) {
	if sig.At.IsZero() {
		sig.At = r.now()
	}
	r.dispatchController(func(c Controller) { c.OnSignal(sig) })
}

func (r *Root) snapshot() Snapshot {
	if r.ctrl == nil {
		return Snapshot{}
	}
	return r.ctrl.Snapshot()
}

func (r *Root) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	r.cols = msg.Width
	r.rows = msg.Height
	r.layout = DetermineLayoutMode(r.cols, r.rows)
	r.clampScroll()
	if !r.sized {
		// The first size report describes the initial terminal, not a resize.
		r.sized = true
		return r, nil
	}
	r.emit(input.Signal{Kind: input.Resize, Width: msg.Width, Height: msg.Height})
	return r, nil
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%v mod:%v text:%q", msg.Code, msg.Mod, msg.Text))

	if key.Matches(msg, r.keymap.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	name, ok := input.FromKeyPress(msg)
	if ok {
		r.emit(input.Signal{Kind: input.KeyDown, Key: name, InTextField: r.fieldFocus})
	}

	if r.fieldFocus {
		return r.handleFieldKey(msg, name, ok)
	}

	switch {
	case key.Matches(msg, r.keymap.Hub):
		r.hubOpen = !r.hubOpen
		return r, r.animateIfNeeded()
	case key.Matches(msg, r.keymap.Close):
		r.closeTopPanel()
		return r, r.animateIfNeeded()
	case key.Matches(msg, r.keymap.Zoom):
		if r.project != "" {
			r.dispatchController(func(c Controller) { c.OnProjectImageClick() })
		}
		return r, nil
	case key.Matches(msg, r.keymap.Field):
		r.fieldFocus = true
		r.field = []rune(r.fragment)
		return r, nil
	case key.Matches(msg, r.keymap.Open):
		if r.project == "" && !r.hubOpen && len(r.page.Projects) > 0 {
			r.openProject(r.page.Projects[r.selected].ID)
		}
		return r, nil
	}

	switch msg.String() {
	case "up":
		r.moveSelection(-1)
	case "down":
		r.moveSelection(1)
	case "pgup":
		r.scrollBy(-r.bodyHeight())
	case "pgdown":
		r.scrollBy(r.bodyHeight())
	case "home":
		r.scrollBy(-r.scroll)
	case "end":
		r.scrollBy(len(r.pageLines()))
	}
	return r, nil
}

func (r *Root) handleFieldKey(msg tea.KeyPressMsg, name string, ok bool) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keymap.Close), key.Matches(msg, r.keymap.Field):
		r.fieldFocus = false
	case key.Matches(msg, r.keymap.Open):
		r.fieldFocus = false
		r.navigate(string(r.field))
	case name == input.KeyBackspace:
		if len(r.field) > 0 {
			r.field = r.field[:len(r.field)-1]
		}
	case ok && input.IsPrintable(name):
		text := msg.Text
		if text == "" {
			text = name
		}
		if len(r.field) < 64 {
			r.field = append(r.field, []rune(text)...)
		}
	}
	return r, nil
}

// handlePaste appends the first pasted line to the address field.
func (r *Root) handlePaste(content string) {
	if !r.fieldFocus {
		return
	}
	if i := strings.IndexAny(content, "\r\n"); i >= 0 {
		content = content[:i]
	}
	for _, ch := range content {
		if len(r.field) >= 64 {
			break
		}
		if ch >= ' ' && ch != 0x7f {
			r.field = append(r.field, ch)
		}
	}
}

// navigate moves the page to a new fragment, the terminal stand-in for a
// hash change.
func (r *Root) navigate(raw string) {
	frag := strings.TrimSpace(raw)
	if !strings.HasPrefix(frag, "#") {
		frag = "#/" + strings.TrimPrefix(frag, "/")
	}
	r.fragment = frag
	r.emit(input.Signal{Kind: input.Fragment, Fragment: frag})
}

func (r *Root) openProject(id string) {
	for i, p := range r.page.Projects {
		if p.ID == id {
			r.selected = i
		}
	}
	r.project = id
	r.dispatchController(func(c Controller) { c.OnOpenProject(id) })
}

func (r *Root) closeTopPanel() {
	switch {
	case r.hubOpen:
		r.hubOpen = false
	case r.project != "":
		r.project = ""
		r.dispatchController(func(c Controller) { c.OnCloseProject() })
	}
}

func (r *Root) moveSelection(delta int) {
	if r.project != "" || len(r.page.Projects) == 0 {
		return
	}
	n := len(r.page.Projects)
	r.selected = ((r.selected+delta)%n + n) % n
}

func (r *Root) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_click:%d,%d button:%v", m.X, m.Y, m.Button))

	switch m.Button {
	case tea.MouseRight:
		r.emit(input.Signal{Kind: input.ContextMenu, X: m.X, Y: m.Y})
		return r, nil
	case tea.MouseLeft:
	default:
		return r, nil
	}

	seg := r.hitTest(m.X, m.Y)
	r.selecting = true
	r.selAnchor = point{m.X, m.Y}
	r.selEnd = r.selAnchor

	r.emit(input.Signal{Kind: input.Click, X: m.X, Y: m.Y, Target: seg.target, Interactive: seg.interactive})
	now := r.now()
	pos := point{m.X, m.Y}
	if r.lastClick.ok && r.lastClick.pos == pos && now.Sub(r.lastClick.at) <= doubleClickWindow {
		r.lastClick = clickMark{}
		r.emit(input.Signal{Kind: input.DoubleClick, X: m.X, Y: m.Y, Target: seg.target, Interactive: seg.interactive})
	} else {
		r.lastClick = clickMark{at: now, pos: pos, ok: true}
	}

	r.activate(seg)
	return r, r.animateIfNeeded()
}

// activate performs the page action behind a clicked segment.
func (r *Root) activate(seg segment) {
	switch {
	case seg.target == input.TargetProject && seg.ref != "":
		if r.project == "" {
			r.openProject(seg.ref)
		}
	case seg.target == input.TargetImage:
		r.dispatchController(func(c Controller) { c.OnProjectImageClick() })
	case seg.target == input.TargetField:
		r.fieldFocus = true
		r.field = []rune(r.fragment)
	case seg.target == input.TargetButton && seg.ref == "hub":
		r.hubOpen = !r.hubOpen
	case seg.target == input.TargetButton && seg.ref == "close":
		r.closeTopPanel()
	case seg.target == input.TargetLink:
		r.statusFlash = seg.ref
	}
}

func (r *Root) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_release:%d,%d", m.X, m.Y))
	text := ""
	if r.selecting {
		r.selEnd = point{m.X, m.Y}
		text = r.selectedText()
	}
	r.selecting = false
	r.emit(input.Signal{Kind: input.MouseUp, X: m.X, Y: m.Y, Text: text})
	return r, nil
}

func (r *Root) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	if r.selecting && m.Button == tea.MouseLeft {
		r.selEnd = point{m.X, m.Y}
	}
	now := r.now()
	if now.Sub(r.lastActivity) < activityThrottle {
		return r, nil
	}
	r.lastActivity = now
	r.emit(input.Signal{Kind: input.Activity, X: m.X, Y: m.Y})
	return r, nil
}

func (r *Root) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	m := msg.Mouse()
	r.recordInputEvent(fmt.Sprintf("mouse_wheel:%d,%d button:%v", m.X, m.Y, m.Button))
	switch m.Button {
	case tea.MouseWheelUp:
		r.scrollBy(-wheelStep)
	case tea.MouseWheelDown:
		r.scrollBy(wheelStep)
	}
	return r, nil
}

func (r *Root) scrollBy(delta int) {
	r.scroll += delta
	r.clampScroll()
	r.emit(input.Signal{
		Kind:          input.Scroll,
		ScrollTop:     r.scroll,
		ViewHeight:    r.bodyHeight(),
		ContentHeight: len(r.pageLines()),
	})
}

func (r *Root) clampScroll() {
	limit := max(0, len(r.pageLines())-r.bodyHeight())
	r.scroll = min(max(0, r.scroll), limit)
}

func (r *Root) bodyHeight() int {
	return max(1, r.rows-2)
}

// selectedText returns the plain text between the drag anchor and end,
// reading the current frame row by row.
func (r *Root) selectedText() string {
	a, b := r.selAnchor, r.selEnd
	if a == b {
		return ""
	}
	if b.y < a.y || (b.y == a.y && b.x < a.x) {
		a, b = b, a
	}
	lines := r.screenLines(r.snapshot())
	var parts []string
	for y := a.y; y <= b.y && y < len(lines); y++ {
		if y < 0 {
			continue
		}
		row := []rune(lines[y].plain())
		from, to := 0, len(row)
		if y == a.y {
			from = min(a.x, len(row))
		}
		if y == b.y {
			to = min(b.x+1, len(row))
		}
		if from < to {
			parts = append(parts, strings.TrimRight(string(row[from:to]), " "))
		}
	}
	return strings.Join(parts, "\n")
}

func (r *Root) animateIfNeeded() tea.Cmd {
	target := 0.0
	if r.hubOpen {
		target = 1.0
	}
	if r.shouldAnimate(target) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if target > 0 {
		return r.hubPos < 0.999 || abs(r.hubVel) > 0.001
	}
	return r.hubPos > 0.001 || abs(r.hubVel) > 0.001
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered",
		"where", where,
		"panic", fmt.Sprintf("%v", recovered),
		"message_type", msgType,
		"layout", r.layout,
		"cols", r.cols,
		"rows", r.rows,
		"last_input", r.lastInputEvent,
		"stack", string(debug.Stack()),
	)
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)

package viewer

import (
	"sync"
	"time"

	"eastereggs/internal/achievements"
	"eastereggs/internal/triggers"
)

// Reporter receives achievement ids detected by the viewer.
type Reporter interface {
	ReportTrigger(id string)
}

// Inspector reports once the visitor has opened enough distinct projects.
type Inspector struct {
	need     int
	seen     map[string]struct{}
	reported bool
}

func NewInspector(need int) *Inspector {
	return &Inspector{need: need, seen: map[string]struct{}{}}
}

// Opened records a project and reports true exactly once, when the distinct
// count first reaches the target.
func (i *Inspector) Opened(projectID string) bool {
	if i.reported {
		return false
	}
	i.seen[projectID] = struct{}{}
	if len(i.seen) < i.need {
		return false
	}
	i.reported = true
	return true
}

func (i *Inspector) Distinct() int { return len(i.seen) }

// Viewer is the project detail collaborator. It tracks its own interaction
// patterns and reports the matching achievements over the external channel.
type Viewer struct {
	reporter Reporter
	now      func() time.Time

	mu        sync.Mutex
	open      string
	inspector *Inspector
	reopen    *triggers.Window
	image     *triggers.Window
}

func New(reporter Reporter, now func() time.Time) *Viewer {
	if now == nil {
		now = time.Now
	}
	return &Viewer{
		reporter:  reporter,
		now:       now,
		inspector: NewInspector(3),
		reopen:    triggers.NewWindow(2*time.Second, 3),
		image:     triggers.NewWindow(2*time.Second, 5),
	}
}

func (v *Viewer) Open(projectID string) {
	v.mu.Lock()
	v.open = projectID
	var ids []string
	if v.inspector.Opened(projectID) {
		ids = append(ids, achievements.IDInspector)
	}
	if v.reopen.Hit(v.now()) {
		ids = append(ids, achievements.IDIndecisive)
	}
	v.mu.Unlock()
	v.report(ids...)
}

func (v *Viewer) Close() {
	v.mu.Lock()
	v.open = ""
	v.mu.Unlock()
}

// ImageClick records a click on the open project's screenshot.
func (v *Viewer) ImageClick() {
	v.mu.Lock()
	if v.open == "" {
		v.mu.Unlock()
		return
	}
	fired := v.image.Hit(v.now())
	v.mu.Unlock()
	if fired {
		v.report(achievements.IDPixelPeeper)
	}
}

// Current returns the open project id, or "" when closed.
func (v *Viewer) Current() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

func (v *Viewer) report(ids ...string) {
	if v.reporter == nil {
		return
	}
	for _, id := range ids {
		v.reporter.ReportTrigger(id)
	}
}

package triggers

import "time"

// Window counts events inside a sliding time span.
type Window struct {
	span      time.Duration
	threshold int
	hits      []time.Time
}

func NewWindow(span time.Duration, threshold int) *Window {
	if threshold < 1 {
		threshold = 1
	}
	return &Window{span: span, threshold: threshold}
}

// Hit records an event at t. It reports true when the number of events no
// older than span reaches the threshold, and then starts over.
func (w *Window) Hit(t time.Time) bool {
	kept := w.hits[:0]
	for _, h := range w.hits {
		if t.Sub(h) <= w.span {
			kept = append(kept, h)
		}
	}
	w.hits = append(kept, t)
	if len(w.hits) >= w.threshold {
		w.hits = w.hits[:0]
		return true
	}
	return false
}

func (w *Window) Len() int { return len(w.hits) }

func (w *Window) Reset() { w.hits = w.hits[:0] }

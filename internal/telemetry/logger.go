package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// asyncQueue is how many lines a file logger buffers before dropping.
const asyncQueue = 1024

// JSONLogger writes one JSON object per line. A nil logger discards. File
// loggers hand lines to a background goroutine so callers holding locks never
// wait on the disk.
type JSONLogger struct {
	mu     sync.Mutex
	w      io.WriteCloser
	fields map[string]any
}

func NewJSONLogger(path string) (*JSONLogger, error) {
	if path == "" {
		return &JSONLogger{w: nopCloser{Writer: io.Discard}}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLogger{w: newAsyncWriter(f, asyncQueue)}, nil
}

// NewWriterLogger logs to w without taking ownership of it.
func NewWriterLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{w: nopCloser{Writer: w}}
}

// With returns a logger sharing the same sink that adds fields to every entry.
func (l *JSONLogger) With(fields map[string]any) *JSONLogger {
	if l == nil {
		return nil
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &JSONLogger{w: &sharedWriter{parent: l}, fields: merged}
}

func (l *JSONLogger) Info(msg string, fields map[string]any) {
	l.log("info", msg, fields)
}

func (l *JSONLogger) Warn(msg string, fields map[string]any) {
	l.log("warn", msg, fields)
}

func (l *JSONLogger) Error(msg string, fields map[string]any) {
	l.log("error", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	if l == nil || l.w == nil {
		return
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for k, v := range l.fields {
		entry[k] = v
	}
	for k, v := range fields {
		entry[k] = v
	}
	b, _ := json.Marshal(entry)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(append(b, '\n'))
}

func (l *JSONLogger) Close() error {
	if l == nil || l.w == nil {
		return nil
	}
	return l.w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// sharedWriter routes a derived logger's writes through its parent's lock.
type sharedWriter struct{ parent *JSONLogger }

func (s *sharedWriter) Write(p []byte) (int, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	return s.parent.w.Write(p)
}

func (s *sharedWriter) Close() error { return nil }

// asyncWriter queues lines for a single writer goroutine. Write never
// blocks: when the queue is full the line is dropped and counted, and the
// count is written as a final entry on Close.
type asyncWriter struct {
	dst     io.WriteCloser
	lines   chan []byte
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	err    error
}

func newAsyncWriter(dst io.WriteCloser, capacity int) *asyncWriter {
	w := &asyncWriter{
		dst:   dst,
		lines: make(chan []byte, max(1, capacity)),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for line := range w.lines {
		_, _ = w.dst.Write(line)
	}
}

func (w *asyncWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return 0, os.ErrClosed
	}
	line := append([]byte(nil), p...)
	select {
	case w.lines <- line:
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped reports lines discarded because the queue was full.
func (w *asyncWriter) Dropped() int64 { return w.dropped.Load() }

func (w *asyncWriter) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.lines)
		w.mu.Unlock()
		<-w.done
		if n := w.dropped.Load(); n > 0 {
			b, _ := json.Marshal(map[string]any{
				"ts":      time.Now().UTC().Format(time.RFC3339Nano),
				"level":   "warn",
				"msg":     "log.dropped",
				"dropped": n,
			})
			_, _ = w.dst.Write(append(b, '\n'))
		}
		w.err = w.dst.Close()
	})
	return w.err
}

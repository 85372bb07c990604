package state

import (
	"context"
	"sync"
	"time"

	"eastereggs/internal/telemetry"
)

// Writer moves persistence off the caller's goroutine. Put never blocks on
// I/O: the latest value per key wins and is written by a background
// goroutine. Close drains everything still pending.
type Writer struct {
	store   Store
	logger  telemetry.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	history []UnlockEntry
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func NewWriter(store Store, logger telemetry.Logger) *Writer {
	if logger == nil {
		logger = telemetry.Discard()
	}
	w := &Writer{
		store:   store,
		logger:  logger,
		timeout: 5 * time.Second,
		pending: map[string][]byte{},
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) Put(key string, value []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[key] = append([]byte(nil), value...)
	w.signalLocked()
}

// Record queues an unlock history entry when the store keeps history.
func (w *Writer) Record(entry UnlockEntry) {
	if _, ok := w.store.(History); !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.history = append(w.history, entry)
	w.signalLocked()
}

func (w *Writer) signalLocked() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for range w.wake {
		w.flush()
	}
	w.flush()
}

func (w *Writer) flush() {
	w.mu.Lock()
	batch := w.pending
	history := w.history
	w.pending = map[string][]byte{}
	w.history = nil
	w.mu.Unlock()

	if len(batch) == 0 && len(history) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	for key, value := range batch {
		if err := w.store.Set(ctx, key, value); err != nil {
			w.logger.Error("store.write_failed", map[string]any{"key": key, "error": err.Error()})
		}
	}
	if h, ok := w.store.(History); ok {
		for _, entry := range history {
			if err := h.AppendUnlock(ctx, entry); err != nil {
				w.logger.Error("store.history_failed", map[string]any{"id": entry.AchievementID, "error": err.Error()})
			}
		}
	}
}

// Close flushes pending writes and stops the goroutine. It does not close
// the underlying store.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return nil
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()
	<-w.done
	return nil
}

package state

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("state: store closed")

// Store is a minimal key/value record store. Get reports ok=false for a
// missing key; a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// History is implemented by stores that also keep an append-only log of
// unlock events. The unlocked set is authoritative; history is informational.
type History interface {
	AppendUnlock(ctx context.Context, entry UnlockEntry) error
	UnlockHistory(ctx context.Context) ([]UnlockEntry, error)
}

type UnlockEntry struct {
	AchievementID string
	SessionID     string
	UnlockedTS    time.Time
}

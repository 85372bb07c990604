package state

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"eastereggs/internal/telemetry"
)

// Open builds the configured backend under dataDir.
func Open(ctx context.Context, backend, dataDir string, logger telemetry.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSQLite:
		store, err := NewSQLite(filepath.Join(dataDir, "state.db"))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case BackendBadger:
		return NewBadger(BadgerConfig{
			Path:       filepath.Join(dataDir, "badger"),
			SyncWrites: true,
			Logger:     logger,
		})
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

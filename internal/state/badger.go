package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"eastereggs/internal/telemetry"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures the embedded Badger backend.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// SyncWrites fsyncs every write.
	SyncWrites bool
	Logger     telemetry.Logger
}

type BadgerStore struct {
	db *badger.DB
}

const (
	kvPrefix      = "kv/"
	historyPrefix = "unlock/"
)

func NewBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for persistent database")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, ErrClosed
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(kvPrefix + key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	if s.db == nil {
		return ErrClosed
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(kvPrefix+key), append([]byte(nil), value...))
	})
}

func (s *BadgerStore) AppendUnlock(_ context.Context, entry UnlockEntry) error {
	if s.db == nil {
		return ErrClosed
	}
	id := strings.TrimSpace(entry.AchievementID)
	if id == "" {
		return nil
	}
	ts := entry.UnlockedTS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	// Zero-padded nanoseconds keep prefix iteration in time order.
	k := fmt.Sprintf("%s%020d/%s", historyPrefix, ts.UTC().UnixNano(), id)
	v := entry.SessionID
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(k), []byte(v))
	})
}

func (s *BadgerStore) UnlockHistory(_ context.Context) ([]UnlockEntry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	out := []UnlockEntry{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(historyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			rest := strings.TrimPrefix(string(item.Key()), historyPrefix)
			tsRaw, id, ok := strings.Cut(rest, "/")
			if !ok {
				continue
			}
			var nanos int64
			if _, err := fmt.Sscanf(tsRaw, "%d", &nanos); err != nil {
				continue
			}
			session, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, UnlockEntry{
				AchievementID: id,
				SessionID:     string(session),
				UnlockedTS:    time.Unix(0, nanos).UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// badgerLogger adapts the JSON logger to badger.Logger.
type badgerLogger struct {
	logger telemetry.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error("badger", map[string]any{"detail": strings.TrimSpace(fmt.Sprintf(format, args...))})
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn("badger", map[string]any{"detail": strings.TrimSpace(fmt.Sprintf(format, args...))})
}

func (l *badgerLogger) Infof(string, ...interface{}) {}

func (l *badgerLogger) Debugf(string, ...interface{}) {}

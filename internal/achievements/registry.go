package achievements

import (
	"context"
	"encoding/json"
	"sync"

	"eastereggs/internal/telemetry"
)

// StorageKey is the record holding the JSON array of unlocked ids.
const StorageKey = "ee-achievements"

// Persister accepts the serialized unlocked set. Implementations must not
// block on I/O.
type Persister interface {
	Put(key string, value []byte)
}

// Source is where a previously persisted set is read from.
type Source interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

type Listener func(def Definition)

type Card struct {
	ID       string
	Name     string
	Hint     string
	Icon     string
	Rarity   Rarity
	Unlocked bool
}

type Summary struct {
	Unlocked int
	Total    int
	Cards    []Card
}

// Registry owns the unlocked set. The set only grows for the life of the
// process; ids outside the catalog are never admitted.
type Registry struct {
	defs      []Definition
	index     map[string]int
	persister Persister
	logger    telemetry.Logger

	mu        sync.RWMutex
	unlocked  map[string]struct{}
	listeners []Listener
}

func NewRegistry(defs []Definition, persister Persister, logger telemetry.Logger) *Registry {
	if logger == nil {
		logger = telemetry.Discard()
	}
	r := &Registry{
		defs:      append([]Definition(nil), defs...),
		index:     make(map[string]int, len(defs)),
		persister: persister,
		logger:    logger,
		unlocked:  map[string]struct{}{},
	}
	for i, def := range r.defs {
		r.index[def.ID] = i
	}
	return r
}

// Load restores the unlocked set. Unreadable or malformed data is logged and
// treated as empty; ids no longer in the catalog are dropped.
func (r *Registry) Load(ctx context.Context, src Source) {
	if src == nil {
		return
	}
	raw, ok, err := src.Get(ctx, StorageKey)
	if err != nil {
		r.logger.Warn("achievements.load_failed", map[string]any{"error": err.Error()})
		return
	}
	if !ok {
		return
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		r.logger.Warn("achievements.load_corrupt", map[string]any{"error": err.Error()})
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for _, id := range ids {
		if _, known := r.index[id]; !known {
			dropped++
			continue
		}
		r.unlocked[id] = struct{}{}
	}
	if dropped > 0 {
		r.logger.Info("achievements.unknown_ids_dropped", map[string]any{"count": dropped})
	}
}

func (r *Registry) OnUnlock(fn Listener) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Unlock admits id and reports whether it was newly unlocked. Unknown and
// already-unlocked ids are no-ops.
func (r *Registry) Unlock(id string) bool {
	r.mu.Lock()
	i, known := r.index[id]
	if !known {
		r.mu.Unlock()
		r.logger.Warn("achievements.unknown_id", map[string]any{"id": id})
		return false
	}
	if _, done := r.unlocked[id]; done {
		r.mu.Unlock()
		return false
	}
	r.unlocked[id] = struct{}{}
	payload := r.encodeLocked()
	listeners := append([]Listener(nil), r.listeners...)
	def := r.defs[i]
	r.mu.Unlock()

	if r.persister != nil {
		r.persister.Put(StorageKey, payload)
	}
	for _, fn := range listeners {
		fn(def)
	}
	return true
}

func (r *Registry) encodeLocked() []byte {
	ids := make([]string, 0, len(r.unlocked))
	for _, def := range r.defs {
		if _, ok := r.unlocked[def.ID]; ok {
			ids = append(ids, def.ID)
		}
	}
	payload, _ := json.Marshal(ids)
	return payload
}

func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.unlocked[id]
	return ok
}

func (r *Registry) Definition(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

func (r *Registry) Definitions() []Definition {
	return append([]Definition(nil), r.defs...)
}

// Unlocked lists unlocked ids in catalog order.
func (r *Registry) Unlocked() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.unlocked))
	for _, def := range r.defs {
		if _, ok := r.unlocked[def.ID]; ok {
			out = append(out, def.ID)
		}
	}
	return out
}

// Summary returns one card per catalog entry. Locked cards keep their hint
// and rarity but hide the name.
func (r *Registry) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Summary{Total: len(r.defs), Cards: make([]Card, 0, len(r.defs))}
	for _, def := range r.defs {
		_, ok := r.unlocked[def.ID]
		card := Card{ID: def.ID, Hint: def.Hint, Icon: def.Icon, Rarity: def.Rarity, Unlocked: ok}
		if ok {
			card.Name = def.Name
			s.Unlocked++
		}
		s.Cards = append(s.Cards, card)
	}
	return s
}

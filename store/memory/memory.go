// Package memory provides an in-memory Store implementation (for testing/dev).
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/warp/benefit-engine/record"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of the persistence capability
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	cards []record.Card
	saved bool
}

func New() *Memory {
	return &Memory{}
}

// Seed replaces the stored set without going through SaveData (test setup).
func (m *Memory) Seed(cards []record.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards = deepCopy(cards)
	m.saved = true
}

// LoadData returns a deep copy of the stored records; an empty slice when
// nothing has been saved yet.
func (m *Memory) LoadData(_ context.Context) ([]record.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.saved {
		return []record.Card{}, nil
	}
	return deepCopy(m.cards), nil
}

// SaveData replaces the stored set. The copy is taken before the swap, so a
// caller mutating its slice afterwards cannot corrupt the stored state.
func (m *Memory) SaveData(_ context.Context, cards []record.Card) error {
	copied := deepCopy(cards)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards = copied
	m.saved = true
	return nil
}

var _ record.Store = (*Memory)(nil)

// deepCopy clones records through their wire form, the same shape any real
// backend would round-trip them through.
func deepCopy(cards []record.Card) []record.Card {
	if cards == nil {
		return nil
	}
	raw, err := json.Marshal(cards)
	if err != nil {
		// Record shapes are plain data; marshaling cannot fail for them.
		panic(err)
	}
	out := make([]record.Card, 0, len(cards))
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

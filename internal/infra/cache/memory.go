package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"court-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// MemoryExpiryIndex is the single-process stand-in for RedisExpiryIndex.
type MemoryExpiryIndex struct {
	mu      sync.Mutex
	entries map[uuid.UUID]time.Time
}

func NewMemoryExpiryIndex() *MemoryExpiryIndex {
	return &MemoryExpiryIndex{entries: make(map[uuid.UUID]time.Time)}
}

func (m *MemoryExpiryIndex) Add(_ context.Context, id uuid.UUID, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = expiresAt
	return nil
}

func (m *MemoryExpiryIndex) Remove(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MemoryExpiryIndex) Due(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	due := make([]shared.ExpiryEntry, 0)
	for id, at := range m.entries {
		if !at.After(now) {
			due = append(due, shared.ExpiryEntry{ReservationID: id, ExpiresAt: at})
		}
	}
	m.mu.Unlock()

	slices.SortFunc(due, func(a, b shared.ExpiryEntry) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	ids := make([]uuid.UUID, len(due))
	for i, e := range due {
		ids[i] = e.ReservationID
	}
	return ids, nil
}

func (m *MemoryExpiryIndex) Sync(_ context.Context, entries []shared.ExpiryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ReservationID] = e.ExpiresAt
	}
	return nil
}

// Len is used by tests.
func (m *MemoryExpiryIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type MemoryEventDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryEventDeduper(ttl time.Duration) *MemoryEventDeduper {
	return &MemoryEventDeduper{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (m *MemoryEventDeduper) Seen(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at, ok := m.seen[eventID]
	if !ok {
		return false, nil
	}
	if m.ttl > 0 && m.now().Sub(at) >= m.ttl {
		delete(m.seen, eventID)
		return false, nil
	}
	return true, nil
}

func (m *MemoryEventDeduper) Remember(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[eventID] = m.now()
	return nil
}

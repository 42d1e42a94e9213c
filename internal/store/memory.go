package store

import (
	"context"
	"slices"

	"github.com/sasha-s/go-deadlock"

	"raiap/internal/domain"
)

// MemoryStreams keeps streams in process memory.
type MemoryStreams struct {
	mu      deadlock.RWMutex
	streams map[domain.StreamID][]domain.Anchor
}

var (
	_ domain.StreamStore   = (*MemoryStreams)(nil)
	_ domain.StreamCatalog = (*MemoryStreams)(nil)
)

// NewMemoryStreams returns an empty in-memory stream store.
func NewMemoryStreams() *MemoryStreams {
	return &MemoryStreams{streams: make(map[domain.StreamID][]domain.Anchor)}
}

// LoadStream returns a copy of the stored anchors; an unknown stream is empty.
func (m *MemoryStreams) LoadStream(_ context.Context, id domain.StreamID) ([]domain.Anchor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAnchors(m.streams[id]), nil
}

// PersistAnchor appends a if it extends the stored head.
func (m *MemoryStreams) PersistAnchor(_ context.Context, id domain.StreamID, a domain.Anchor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.streams[id]
	if err := checkExtends(id, headOf(id, cur), len(cur), a); err != nil {
		return err
	}
	m.streams[id] = append(cur, a.Clone())
	return nil
}

// ListStreams returns the known stream IDs in sorted order.
func (m *MemoryStreams) ListStreams(context.Context) ([]domain.StreamID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]domain.StreamID, 0, len(m.streams))
	for id := range m.streams {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps charts in process memory. Charts are copied on the
// way in and out.
type MemoryStore struct {
	mu     sync.RWMutex
	charts map[string][]byte
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{charts: make(map[string][]byte), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Chart, error) {
	s.mu.RLock()
	data, ok := s.charts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	c, err := decode(data)
	if err != nil {
		return nil, err
	}
	if c.Expired(s.now()) {
		s.mu.Lock()
		delete(s.charts, id)
		s.mu.Unlock()
		return nil, notFound(id)
	}
	return c, nil
}

func (s *MemoryStore) Put(ctx context.Context, c *Chart) error {
	prepare(c, s.ttl, s.now())
	data, err := encode(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charts[c.ID] = data
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.charts[id]; !ok {
		return notFound(id)
	}
	delete(s.charts, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := make([]Summary, 0, len(s.charts))
	for _, data := range s.charts {
		c, err := decode(data)
		if err != nil {
			return nil, err
		}
		if !c.Expired(now) {
			out = append(out, c.summary())
		}
	}
	sortSummaries(out)
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

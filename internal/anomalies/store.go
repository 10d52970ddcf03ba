package anomalies

import (
	"sync"
	"time"

	"driftwatch/internal/model"
)

// Store is a bounded in-memory buffer of anomaly records, oldest dropped
// first once the limit is reached.
type Store struct {
	mu    sync.RWMutex
	buf   []model.Anomaly
	limit int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 1000
	}
	return &Store{limit: limit}
}

func (s *Store) Add(a model.Anomaly) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) < s.limit {
		s.buf = append(s.buf, a)
		return
	}
	copy(s.buf, s.buf[1:])
	s.buf[len(s.buf)-1] = a
}

func (s *Store) List(limit int) []model.Anomaly {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.buf) {
		limit = len(s.buf)
	}
	out := make([]model.Anomaly, 0, limit)
	start := len(s.buf) - limit
	if start < 0 {
		start = 0
	}
	for i := start; i < len(s.buf); i++ {
		out = append(out, s.buf[i])
	}
	return out
}

func (s *Store) Since(ts time.Time) []model.Anomaly {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Anomaly, 0)
	for _, a := range s.buf {
		if !a.Timestamp.Before(ts) {
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buf)
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = nil
}

package stats

import (
	"sync"
	"time"

	"driftwatch/internal/model"
)

// Store keeps the latest window snapshot per stream, bounded by evicting
// the stream that has gone longest without an update.
type Store struct {
	mu        sync.RWMutex
	byStream  map[string]model.WindowStats
	updatedAt map[string]time.Time
	limit     int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 5000
	}
	return &Store{
		byStream:  make(map[string]model.WindowStats),
		updatedAt: make(map[string]time.Time),
		limit:     limit,
	}
}

func (s *Store) Update(ws model.WindowStats) {
	if ws.StreamID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byStream[ws.StreamID] = ws
	s.updatedAt[ws.StreamID] = time.Now().UTC()
	if len(s.byStream) > s.limit {
		s.evictOldest()
	}
}

func (s *Store) Get(streamID string) (model.WindowStats, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.byStream[streamID]
	if !ok {
		return model.WindowStats{}, time.Time{}, false
	}
	return ws, s.updatedAt[streamID], true
}

func (s *Store) GetAll() map[string]model.WindowStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.WindowStats, len(s.byStream))
	for id, ws := range s.byStream {
		out[id] = ws
	}
	return out
}

func (s *Store) evictOldest() {
	var oldestStream string
	var oldest time.Time
	for id, ts := range s.updatedAt {
		if oldestStream == "" || ts.Before(oldest) {
			oldestStream = id
			oldest = ts
		}
	}
	if oldestStream != "" {
		delete(s.byStream, oldestStream)
		delete(s.updatedAt, oldestStream)
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byStream = make(map[string]model.WindowStats)
	s.updatedAt = make(map[string]time.Time)
}

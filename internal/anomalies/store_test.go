package anomalies

import (
	"testing"
	"time"

	"driftwatch/internal/model"
)

func record(ts time.Time, value float64) model.Anomaly {
	return model.Anomaly{Timestamp: ts, StreamID: "s1", Value: value}
}

func TestStoreBounded(t *testing.T) {
	s := NewStore(3)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Add(record(now.Add(time.Duration(i)*time.Second), float64(i)))
	}
	if s.Len() != 3 {
		t.Fatalf("len: %d", s.Len())
	}
	list := s.List(0)
	if list[0].Value != 2 || list[2].Value != 4 {
		t.Fatalf("oldest not evicted: %+v", list)
	}
}

func TestStoreSince(t *testing.T) {
	s := NewStore(10)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.Add(record(now.Add(time.Duration(i)*time.Minute), float64(i)))
	}
	got := s.Since(now.Add(3 * time.Minute))
	if len(got) != 2 {
		t.Fatalf("since: %d records", len(got))
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(10)
	s.Add(record(time.Now(), 1))
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("len after clear: %d", s.Len())
	}
}

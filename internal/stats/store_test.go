package stats

import (
	"testing"

	"driftwatch/internal/model"
)

func TestStoreUpdateGet(t *testing.T) {
	s := NewStore(10)
	s.Update(model.WindowStats{StreamID: "s1", Mean: 3, Samples: 5})
	ws, updated, ok := s.Get("s1")
	if !ok {
		t.Fatalf("stream missing")
	}
	if ws.Mean != 3 || ws.Samples != 5 {
		t.Fatalf("stats: %+v", ws)
	}
	if updated.IsZero() {
		t.Fatalf("updated_at not set")
	}
	if _, _, ok := s.Get("absent"); ok {
		t.Fatalf("unexpected hit")
	}
}

func TestStoreIgnoresEmptyStreamID(t *testing.T) {
	s := NewStore(10)
	s.Update(model.WindowStats{Mean: 1})
	if len(s.GetAll()) != 0 {
		t.Fatalf("empty stream id stored")
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(2)
	s.Update(model.WindowStats{StreamID: "a"})
	s.Update(model.WindowStats{StreamID: "b"})
	s.Update(model.WindowStats{StreamID: "c"})
	all := s.GetAll()
	if len(all) != 2 {
		t.Fatalf("size: %d", len(all))
	}
	if _, ok := all["a"]; ok {
		t.Fatalf("oldest stream not evicted")
	}
}

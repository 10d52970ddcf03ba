package engine

import (
	"math"
	"testing"

	"driftwatch/internal/anomalies"
	"driftwatch/internal/config"
	"driftwatch/internal/model"
	"driftwatch/internal/stats"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Detection.WindowSize = 5
	cfg.Detection.Threshold = 2.5
	return cfg
}

func newEngineForTest(cfg *config.Config) (*Engine, *stats.Store, *anomalies.Store) {
	statsStore := stats.NewStore(100)
	anomalyStore := anomalies.NewStore(100)
	return NewEngine(cfg, nil, statsStore, anomalyStore, nil), statsStore, anomalyStore
}

func process(t *testing.T, eng *Engine, stream string, values ...float64) {
	t.Helper()
	for _, v := range values {
		if _, err := eng.ProcessSample(model.Sample{StreamID: stream, Value: v}); err != nil {
			t.Fatalf("ProcessSample(%v): %v", v, err)
		}
	}
}

func TestEngineRecordsAnomaly(t *testing.T) {
	eng, statsStore, anomalyStore := newEngineForTest(testConfig())
	process(t, eng, "s1", 10, 10, 10, 10, 10, 50)

	if anomalyStore.Len() != 1 {
		t.Fatalf("anomaly records: %d", anomalyStore.Len())
	}
	rec := anomalyStore.List(1)[0]
	if rec.StreamID != "s1" || rec.Value != 50 || rec.Seq != 6 {
		t.Fatalf("anomaly record: %+v", rec)
	}
	if rec.Threshold != 2.5 || rec.WindowSize != 5 {
		t.Fatalf("anomaly record config: %+v", rec)
	}

	ws, _, ok := statsStore.Get("s1")
	if !ok {
		t.Fatalf("no stats for stream")
	}
	if ws.Samples != 6 || ws.Anomalies != 1 {
		t.Fatalf("stats: %+v", ws)
	}
}

func TestEngineRejectedSampleLeavesStateIntact(t *testing.T) {
	eng, statsStore, anomalyStore := newEngineForTest(testConfig())
	process(t, eng, "s1", 1, 2, 3)

	if _, err := eng.ProcessSample(model.Sample{StreamID: "s1", Value: math.NaN()}); err == nil {
		t.Fatalf("expected error for NaN sample")
	}

	c, err := eng.ProcessSample(model.Sample{StreamID: "s1", Value: 2})
	if err != nil {
		t.Fatalf("ProcessSample after rejection: %v", err)
	}
	if c.Anomaly {
		t.Fatalf("in-range value flagged after rejection")
	}
	ws, _, _ := statsStore.Get("s1")
	if ws.Samples != 4 || ws.Rejected != 1 || ws.Len != 4 {
		t.Fatalf("stats after rejection: %+v", ws)
	}
	if anomalyStore.Len() != 0 {
		t.Fatalf("rejected sample produced anomaly records")
	}
}

func TestEngineStreamsAreIndependent(t *testing.T) {
	eng, _, anomalyStore := newEngineForTest(testConfig())
	process(t, eng, "a", 10, 10, 10, 10, 10)
	// A flat-window deviation on stream a must not be visible from stream b.
	process(t, eng, "b", 50, 50)
	if anomalyStore.Len() != 0 {
		t.Fatalf("cross-stream contamination: %d records", anomalyStore.Len())
	}
	process(t, eng, "a", 50)
	if anomalyStore.Len() != 1 {
		t.Fatalf("expected one anomaly on stream a, got %d", anomalyStore.Len())
	}
}

func TestEngineDefaultStreamID(t *testing.T) {
	cfg := testConfig()
	cfg.Ingest.Parser.DefaultStreamID = "main"
	eng, statsStore, _ := newEngineForTest(cfg)
	process(t, eng, "", 1, 2)
	if _, _, ok := statsStore.Get("main"); !ok {
		t.Fatalf("unnamed samples not routed to default stream")
	}
}

func TestEngineReset(t *testing.T) {
	eng, statsStore, _ := newEngineForTest(testConfig())
	process(t, eng, "s1", 1, 2, 3, 4, 5)
	eng.Reset()
	process(t, eng, "s1", 100)
	ws, _, _ := statsStore.Get("s1")
	if ws.Samples != 1 || ws.Len != 1 {
		t.Fatalf("stats after reset: %+v", ws)
	}
}

type capturePublisher struct {
	streams []string
	results []model.Classification
}

func (p *capturePublisher) Publish(streamID string, seq uint64, c model.Classification) {
	p.streams = append(p.streams, streamID)
	p.results = append(p.results, c)
}

func TestEnginePublishesEveryClassification(t *testing.T) {
	eng, _, _ := newEngineForTest(testConfig())
	pub := &capturePublisher{}
	eng.AddPublisher(pub)
	process(t, eng, "s1", 10, 10, 10, 10, 10, 50)
	if len(pub.results) != 6 {
		t.Fatalf("published %d results, want 6", len(pub.results))
	}
	if !pub.results[5].Anomaly {
		t.Fatalf("final classification not flagged: %+v", pub.results[5])
	}
}

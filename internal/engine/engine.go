package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"driftwatch/internal/anomalies"
	"driftwatch/internal/config"
	"driftwatch/internal/model"
	"driftwatch/internal/stats"
	"driftwatch/internal/storage"
)

// Publisher receives every classification after the detector has produced
// it. Implementations run synchronously on the engine goroutine and must
// not block.
type Publisher interface {
	Publish(streamID string, seq uint64, c model.Classification)
}

// Engine drains samples off the ingest channel and runs each one through
// the detector owned by its stream. Streams never share window state; a
// stream id seen for the first time gets a fresh detector built from the
// current detection config.
type Engine struct {
	logger     *slog.Logger
	stats      *stats.Store
	anomalies  *anomalies.Store
	store      storage.Store
	cfg        atomic.Value
	mu         sync.Mutex
	streams    map[string]*StreamState
	publishers []Publisher
	started    time.Time
}

type StreamState struct {
	id        string
	detector  *Detector
	samples   uint64
	anomalies uint64
	rejected  uint64
}

func NewEngine(cfg *config.Config, logger *slog.Logger, statsStore *stats.Store, anomalyStore *anomalies.Store, store storage.Store) *Engine {
	e := &Engine{
		logger:    logger,
		stats:     statsStore,
		anomalies: anomalyStore,
		store:     store,
		streams:   make(map[string]*StreamState),
		started:   time.Now().UTC(),
	}
	e.cfg.Store(cfg)
	return e
}

// AddPublisher registers a consumer for classification results. Call before
// Start; the publisher list is not guarded afterwards.
func (e *Engine) AddPublisher(p Publisher) {
	if p != nil {
		e.publishers = append(e.publishers, p)
	}
}

// UpdateConfig swaps the detection config. Existing streams keep their
// windows; the new parameters apply to streams created afterwards.
func (e *Engine) UpdateConfig(cfg *config.Config) {
	e.cfg.Store(cfg)
}

func (e *Engine) config() *config.Config {
	if v := e.cfg.Load(); v != nil {
		return v.(*config.Config)
	}
	return config.DefaultConfig()
}

func (e *Engine) Start(ctx context.Context, in <-chan model.Sample) {
	go func() {
		for {
			select {
			case s := <-in:
				e.ProcessSample(s)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// ProcessSample classifies one sample and fans the result out to the
// stores, publishers, and storage. A sample the detector rejects is counted
// against its stream but produces no result; the stream stays healthy.
func (e *Engine) ProcessSample(s model.Sample) (model.Classification, error) {
	cfg := e.config()
	st, err := e.getStream(s.StreamID, cfg)
	if err != nil {
		if e.logger != nil {
			e.logger.Error("detector construction failed", "stream_id", s.StreamID, "err", err)
		}
		return model.Classification{}, err
	}

	c, err := st.detector.Classify(s.Value)
	if err != nil {
		st.rejected++
		if e.logger != nil {
			e.logger.Warn("sample rejected",
				"stream_id", st.id,
				"source", s.Source,
				"err", err,
			)
		}
		return model.Classification{}, err
	}
	st.samples++
	seq := st.samples

	if c.Anomaly {
		st.anomalies++
		rec := model.Anomaly{
			Timestamp:  s.Timestamp,
			StreamID:   st.id,
			Value:      c.Value,
			Score:      c.Score,
			Threshold:  st.detector.Threshold(),
			WindowSize: st.detector.WindowSize(),
			Seq:        seq,
			Source:     s.Source,
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = time.Now().UTC()
		}
		if e.anomalies != nil {
			e.anomalies.Add(rec)
		}
		if e.logger != nil {
			e.logger.Warn("anomaly detected",
				"stream_id", rec.StreamID,
				"seq", rec.Seq,
				"value", rec.Value,
				"score", rec.Score,
				"scored", c.Scored,
			)
		}
		if e.store != nil {
			_ = e.store.SaveAnomaly(context.Background(), rec)
		}
	}

	ws := e.snapshot(st)
	if e.stats != nil {
		e.stats.Update(ws)
	}
	if e.store != nil && c.Anomaly {
		_ = e.store.SaveStats(context.Background(), ws)
	}
	for _, p := range e.publishers {
		p.Publish(st.id, seq, c)
	}
	return c, nil
}

func (e *Engine) snapshot(st *StreamState) model.WindowStats {
	mean, stddev := st.detector.WindowStats()
	return model.WindowStats{
		StreamID:  st.id,
		Capacity:  st.detector.WindowSize(),
		Len:       st.detector.WindowLen(),
		Mean:      mean,
		StdDev:    stddev,
		Samples:   st.samples,
		Anomalies: st.anomalies,
		Rejected:  st.rejected,
	}
}

// Reset drops all per-stream detectors and counters.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.streams = make(map[string]*StreamState)
	e.mu.Unlock()
}

func (e *Engine) getStream(streamID string, cfg *config.Config) (*StreamState, error) {
	if streamID == "" {
		streamID = cfg.Ingest.Parser.DefaultStreamID
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.streams[streamID]; ok {
		return st, nil
	}
	det, err := NewDetector(cfg.Detection.WindowSize, cfg.Detection.Threshold)
	if err != nil {
		return nil, err
	}
	st := &StreamState{id: streamID, detector: det}
	e.streams[streamID] = st
	return st, nil
}

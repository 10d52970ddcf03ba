package model

import (
	"encoding/json"
	"time"
)

// Sample is one numeric reading taken off an ingest source, keyed by the
// stream it belongs to.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	StreamID  string    `json:"stream_id"`
	Value     float64   `json:"value"`
	Source    string    `json:"source,omitempty"`
	Raw       string    `json:"raw,omitempty"`
}

// Classification is the per-sample verdict. Score is only meaningful when
// Scored is true; a window with fewer than two points, or a window whose
// values are all identical, cannot produce a z-score.
type Classification struct {
	Value   float64
	Anomaly bool
	Score   float64
	Scored  bool
}

func (c Classification) MarshalJSON() ([]byte, error) {
	var score *float64
	if c.Scored {
		s := c.Score
		score = &s
	}
	return json.Marshal(struct {
		Value   float64  `json:"value"`
		Anomaly bool     `json:"anomaly"`
		Score   *float64 `json:"score"`
	}{c.Value, c.Anomaly, score})
}

// Anomaly is the durable record emitted when a sample is flagged.
type Anomaly struct {
	Timestamp  time.Time `json:"timestamp"`
	StreamID   string    `json:"stream_id"`
	Value      float64   `json:"value"`
	Score      float64   `json:"score"`
	Threshold  float64   `json:"threshold"`
	WindowSize int       `json:"window_size"`
	Seq        uint64    `json:"seq"`
	Source     string    `json:"source,omitempty"`
}

// WindowStats is a snapshot of one stream's window after the most recent
// sample was admitted.
type WindowStats struct {
	StreamID  string  `json:"stream_id"`
	Capacity  int     `json:"capacity"`
	Len       int     `json:"len"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Samples   uint64  `json:"samples"`
	Anomalies uint64  `json:"anomalies"`
	Rejected  uint64  `json:"rejected"`
}

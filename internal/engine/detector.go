package engine

import (
	"errors"
	"fmt"
	"math"

	"driftwatch/internal/model"
)

var (
	ErrInvalidConfig = errors.New("invalid detector configuration")
	ErrInvalidSample = errors.New("invalid sample")
)

// Detector flags samples whose z-score against a sliding window of recent
// history exceeds a threshold. The score uses the sample standard deviation
// (N-1 divisor), which keeps the estimate honest for small windows.
//
// A Detector is not safe for concurrent use; parallel streams each need
// their own instance.
type Detector struct {
	windowSize int
	threshold  float64
	window     *Window
}

// NewDetector validates windowSize and threshold and returns a detector
// with an empty window. Invalid parameters fail construction; they are
// never coerced.
func NewDetector(windowSize int, threshold float64) (*Detector, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be a positive integer, got %d", ErrInvalidConfig, windowSize)
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold must be a positive finite number, got %v", ErrInvalidConfig, threshold)
	}
	return &Detector{
		windowSize: windowSize,
		threshold:  threshold,
		window:     NewWindow(windowSize),
	}, nil
}

func (d *Detector) WindowSize() int { return d.windowSize }

func (d *Detector) Threshold() float64 { return d.threshold }

func (d *Detector) WindowLen() int { return d.window.Len() }

func (d *Detector) WindowValues() []float64 { return d.window.Values() }

func (d *Detector) WindowStats() (mean, stddev float64) { return d.window.Stats() }

// Classify scores value against the window contents as they stood before
// this call, then admits value into the window. Judging the new point
// against established history keeps it from dampening its own deviation.
//
// Non-finite values fail with ErrInvalidSample and leave the window
// untouched. With fewer than two points of history the sample is
// unconditionally normal. When every windowed value is identical the
// z-score is undefined; any departure from that constant is flagged.
func (d *Detector) Classify(value float64) (model.Classification, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.Classification{}, fmt.Errorf("%w: %v is not a finite number", ErrInvalidSample, value)
	}
	c := model.Classification{Value: value}
	if d.window.Len() >= 2 {
		mean, stddev := d.window.Stats()
		if stddev == 0 {
			c.Anomaly = value != mean
		} else {
			c.Score = (value - mean) / stddev
			c.Scored = true
			c.Anomaly = math.Abs(c.Score) > d.threshold
		}
	}
	d.window.Push(value)
	return c, nil
}

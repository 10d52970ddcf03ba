package report

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"driftwatch/internal/model"
)

const (
	ansiRed   = "\033[91m"
	ansiReset = "\033[0m"
)

// Console prints one line per classified sample, anomalies in red. It
// implements the engine's publisher hook and runs synchronously after each
// classification, so output order matches arrival order.
type Console struct {
	mu        sync.Mutex
	w         io.Writer
	color     bool
	anomalies uint64
}

func NewConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

func (c *Console) Publish(streamID string, seq uint64, cls model.Classification) {
	score := "n/a"
	if cls.Scored {
		score = fmt.Sprintf("%.2f", cls.Score)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cls.Anomaly {
		atomic.AddUint64(&c.anomalies, 1)
		if c.color {
			fmt.Fprintf(c.w, "%s%s #%d: %.2f (score=%s) ANOMALY%s\n", ansiRed, streamID, seq, cls.Value, score, ansiReset)
		} else {
			fmt.Fprintf(c.w, "%s #%d: %.2f (score=%s) ANOMALY\n", streamID, seq, cls.Value, score)
		}
		return
	}
	fmt.Fprintf(c.w, "%s #%d: %.2f (score=%s) normal\n", streamID, seq, cls.Value, score)
}

// Total reports how many anomalies have been printed.
func (c *Console) Total() uint64 {
	return atomic.LoadUint64(&c.anomalies)
}

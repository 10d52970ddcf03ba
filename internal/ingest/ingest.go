package ingest

import (
	"context"
	"log/slog"
	"time"

	"driftwatch/internal/model"
)

func SendNonBlocking(ctx context.Context, out chan<- model.Sample, s model.Sample, logger *slog.Logger) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	default:
		if logger != nil {
			logger.Warn("sample channel full, dropping sample", "stream_id", s.StreamID, "source", s.Source)
		}
		return false
	}
}

func BackoffSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = 200 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

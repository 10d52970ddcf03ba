package ingest

import (
	"context"
	"log/slog"
	"time"

	"driftwatch/internal/config"
	"driftwatch/internal/model"
	"driftwatch/internal/stream"
)

// StartGenerator drives the synthetic stream source at the configured
// interval, feeding the same channel as every other ingest source. The
// detector only ever sees plain samples; the generator parameters stay on
// this side of the boundary.
func StartGenerator(ctx context.Context, cfg *config.Manager, out chan<- model.Sample, logger *slog.Logger) {
	current := cfg.Get().Generator
	if !current.Enabled {
		if logger != nil {
			logger.Info("generator ingest disabled")
		}
		return
	}
	gen, err := stream.NewGenerator(stream.Config{
		Length:           current.Length,
		Amplitude:        current.Amplitude,
		SeasonalPeriod:   current.SeasonalPeriod,
		NoiseLevel:       current.NoiseLevel,
		Drift:            current.Drift,
		OutlierRate:      current.OutlierRate,
		OutlierMagnitude: current.OutlierMagnitude,
		Seed:             current.Seed,
	})
	if err != nil {
		if logger != nil {
			logger.Error("generator config error", "err", err)
		}
		return
	}
	if logger != nil {
		logger.Info("generator ingest enabled",
			"stream_id", current.StreamID,
			"interval", current.Interval,
			"length", current.Length,
			"seed", current.Seed,
		)
	}
	go func() {
		ticker := time.NewTicker(current.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				v, ok := gen.Next()
				if !ok {
					if logger != nil {
						logger.Info("generator stream complete", "stream_id", current.StreamID, "samples", gen.Pos())
					}
					return
				}
				s := model.Sample{
					Timestamp: time.Now().UTC(),
					StreamID:  current.StreamID,
					Value:     v,
					Source:    "generator",
				}
				SendNonBlocking(ctx, out, s, logger)
			}
		}
	}()
}

package stream

import (
	"fmt"
	"math"
	"math/rand"
)

// Config controls the shape of the synthetic sample stream: a sinusoidal
// seasonal component, gaussian noise, a linear drift, and occasional large
// injected outliers.
type Config struct {
	// Length bounds the stream; 0 means unbounded.
	Length           int
	Amplitude        float64
	SeasonalPeriod   int
	NoiseLevel       float64
	Drift            float64
	OutlierRate      float64
	OutlierMagnitude float64
	Seed             int64
}

func DefaultConfig() Config {
	return Config{
		Length:           1000,
		Amplitude:        1.0,
		SeasonalPeriod:   50,
		NoiseLevel:       0.5,
		Drift:            0.001,
		OutlierRate:      0.02,
		OutlierMagnitude: 10,
		Seed:             42,
	}
}

// Generator produces the stream one value at a time. The same seed yields
// the same sequence. It holds no reference to any consumer.
type Generator struct {
	cfg Config
	rng *rand.Rand
	i   int
}

func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Length < 0 {
		return nil, fmt.Errorf("length must be >= 0, got %d", cfg.Length)
	}
	if cfg.SeasonalPeriod <= 0 {
		return nil, fmt.Errorf("seasonal period must be positive, got %d", cfg.SeasonalPeriod)
	}
	if cfg.NoiseLevel < 0 {
		return nil, fmt.Errorf("noise level must be >= 0, got %v", cfg.NoiseLevel)
	}
	if cfg.OutlierRate < 0 || cfg.OutlierRate > 1 {
		return nil, fmt.Errorf("outlier rate must be in [0, 1], got %v", cfg.OutlierRate)
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Next returns the next sample, or false when a bounded stream is
// exhausted.
func (g *Generator) Next() (float64, bool) {
	if g.cfg.Length > 0 && g.i >= g.cfg.Length {
		return 0, false
	}
	x := float64(g.i)
	v := g.cfg.Amplitude * math.Sin(2*math.Pi*x/float64(g.cfg.SeasonalPeriod))
	if g.cfg.NoiseLevel > 0 {
		v += g.rng.NormFloat64() * g.cfg.NoiseLevel
	}
	v += g.cfg.Drift * x
	if g.cfg.OutlierRate > 0 && g.rng.Float64() < g.cfg.OutlierRate {
		if g.rng.Float64() < 0.5 {
			v -= g.cfg.OutlierMagnitude
		} else {
			v += g.cfg.OutlierMagnitude
		}
	}
	g.i++
	return v, true
}

// Pos reports how many samples have been produced so far.
func (g *Generator) Pos() int { return g.i }

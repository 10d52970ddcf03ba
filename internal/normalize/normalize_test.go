package normalize

import (
	"math"
	"testing"
	"time"

	"driftwatch/internal/config"
)

func TestNormalizeValue(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := Normalize(SampleFields{Value: " 21.4 ", StreamID: "temp01"}, cfg)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.Value != 21.4 || s.StreamID != "temp01" {
		t.Fatalf("sample: %+v", s)
	}
}

func TestNormalizeDefaultStreamID(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Ingest.Parser.DefaultStreamID = "main"
	s, err := Normalize(SampleFields{Value: "1"}, cfg)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.StreamID != "main" {
		t.Fatalf("stream id: %s", s.StreamID)
	}
}

func TestNormalizeMissingValue(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := Normalize(SampleFields{StreamID: "x"}, cfg); err == nil {
		t.Fatalf("expected error for missing value")
	}
	if _, err := Normalize(SampleFields{Value: "not-a-number"}, cfg); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}
}

func TestNormalizePassesNonFiniteThrough(t *testing.T) {
	// The detector owns the finite-sample rule; normalize only converts.
	cfg := config.DefaultConfig()
	s, err := Normalize(SampleFields{Value: "NaN"}, cfg)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !math.IsNaN(s.Value) {
		t.Fatalf("value: %v", s.Value)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := Normalize(SampleFields{Value: "1", Timestamp: "2026-02-23T12:34:56Z"}, cfg)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := time.Date(2026, 2, 23, 12, 34, 56, 0, time.UTC)
	if !s.Timestamp.Equal(want) {
		t.Fatalf("timestamp: %v", s.Timestamp)
	}
}

func TestParseTimestampUnix(t *testing.T) {
	ts, err := ParseTimestamp("1767139200", time.UTC)
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if ts.Unix() != 1767139200 {
		t.Fatalf("unix: %d", ts.Unix())
	}
}

func TestNormalizeBadTimestamp(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := Normalize(SampleFields{Value: "1", Timestamp: "yesterday"}, cfg); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}

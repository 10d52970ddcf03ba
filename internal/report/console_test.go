package report

import (
	"bytes"
	"strings"
	"testing"

	"driftwatch/internal/model"
)

func TestConsoleNormalLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	c.Publish("s1", 3, model.Classification{Value: 1.5, Score: 0.42, Scored: true})
	out := buf.String()
	if !strings.Contains(out, "s1 #3") || !strings.Contains(out, "normal") {
		t.Fatalf("output: %q", out)
	}
	if c.Total() != 0 {
		t.Fatalf("total: %d", c.Total())
	}
}

func TestConsoleAnomalyLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)
	c.Publish("s1", 9, model.Classification{Value: 50, Anomaly: true, Score: 8.1, Scored: true})
	out := buf.String()
	if !strings.Contains(out, "ANOMALY") {
		t.Fatalf("output: %q", out)
	}
	if !strings.Contains(out, "\033[91m") {
		t.Fatalf("missing color escape: %q", out)
	}
	if c.Total() != 1 {
		t.Fatalf("total: %d", c.Total())
	}
}

func TestConsoleUnscoredSample(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	c.Publish("s1", 1, model.Classification{Value: 7})
	if !strings.Contains(buf.String(), "score=n/a") {
		t.Fatalf("output: %q", buf.String())
	}
}

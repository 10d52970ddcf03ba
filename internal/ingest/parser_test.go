package ingest

import "testing"

func TestParseBareNumber(t *testing.T) {
	p := NewParser()
	fields, err := p.ParseLine("  3.75 ")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.Value != "3.75" {
		t.Fatalf("value: %q", fields.Value)
	}
}

func TestParsePlainText(t *testing.T) {
	p := NewParser()
	line := "2026-02-23 12:34:56 sensor=temp01 value=21.4"
	fields, err := p.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.StreamID != "temp01" {
		t.Fatalf("stream id: %s", fields.StreamID)
	}
	if fields.Value != "21.4" {
		t.Fatalf("value: %s", fields.Value)
	}
	if fields.Timestamp == "" {
		t.Fatalf("timestamp missing")
	}
}

func TestParseCSV(t *testing.T) {
	p := NewParser()
	if fields, _ := p.ParseLine("timestamp,stream_id,value"); fields != nil {
		t.Fatalf("expected header to return nil")
	}
	fields, err := p.ParseLine("2026-02-23T12:34:56Z,temp01,21.4")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.StreamID != "temp01" || fields.Value != "21.4" {
		t.Fatalf("csv parse mismatch: %+v", fields)
	}
}

func TestParseCSVPositional(t *testing.T) {
	p := NewParser()
	fields, err := p.ParseLine("temp01,21.4")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.StreamID != "temp01" || fields.Value != "21.4" {
		t.Fatalf("positional csv mismatch: %+v", fields)
	}
}

func TestParseJSON(t *testing.T) {
	p := NewParser()
	line := `{"timestamp":"2026-02-23T12:34:56Z","stream":"temp01","value":21.4}`
	fields, err := p.ParseLine(line)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fields.StreamID != "temp01" || fields.Value != "21.4" {
		t.Fatalf("json parse mismatch: %+v", fields)
	}
}

func TestParseEmptyLine(t *testing.T) {
	p := NewParser()
	fields, err := p.ParseLine("   ")
	if err != nil || fields != nil {
		t.Fatalf("blank line: fields=%v err=%v", fields, err)
	}
}

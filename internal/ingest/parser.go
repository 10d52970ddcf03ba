package ingest

import (
	"encoding/csv"
	"regexp"
	"strconv"
	"strings"

	"driftwatch/internal/normalize"
)

var (
	reTimestamp = regexp.MustCompile(`^\s*([0-9]{4}-[0-9]{2}-[0-9]{2}[ T][0-9:.+-Z]+)`)
	reKV        = regexp.MustCompile(`(?i)([a-zA-Z_]+)=([^\s]+)`)
	reSyslogTS  = regexp.MustCompile(`^\s*([A-Za-z]{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})`)
)

// Parser turns one line of input into sample fields. It accepts JSON
// objects, CSV rows (with header tracking), key=value text, and bare
// numeric lines.
type Parser struct {
	csv *CSVParser
}

func NewParser() *Parser {
	return &Parser{csv: NewCSVParser()}
}

func (p *Parser) ParseLine(line string) (*normalize.SampleFields, error) {
	trim := strings.TrimSpace(line)
	if trim == "" {
		return nil, nil
	}
	if _, err := strconv.ParseFloat(trim, 64); err == nil {
		return &normalize.SampleFields{Value: trim, Raw: line, Extras: map[string]string{}}, nil
	}
	if looksLikeJSON(trim) {
		if fields, err := parseJSON(trim); err == nil {
			fields.Raw = line
			return fields, nil
		}
	}
	if strings.Contains(trim, ",") {
		fields, err := p.csv.Parse(trim)
		if err == nil {
			if fields == nil {
				return nil, nil
			}
			fields.Raw = line
			return fields, nil
		}
	}
	fields, err := parsePlain(trim)
	if err != nil {
		return nil, err
	}
	fields.Raw = line
	return fields, nil
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func parseJSON(line string) (*normalize.SampleFields, error) {
	return ParseJSONBytes([]byte(line))
}

func parsePlain(line string) (*normalize.SampleFields, error) {
	fields := &normalize.SampleFields{Extras: map[string]string{}}
	ts, rest := extractTimestamp(line)
	fields.Timestamp = ts

	kv := map[string]string{}
	for _, match := range reKV.FindAllStringSubmatch(line, -1) {
		key := strings.ToLower(match[1])
		kv[key] = match[2]
	}
	fields.Value = firstNonEmpty(kv, "value", "val", "v", "sample", "reading")
	fields.StreamID = firstNonEmpty(kv, "stream", "stream_id", "streamid", "sensor", "metric", "source_id")
	for k, v := range kv {
		fields.Extras[k] = v
	}

	if fields.Value == "" && rest != "" {
		tokens := strings.Fields(rest)
		for _, tok := range tokens {
			if _, err := strconv.ParseFloat(tok, 64); err == nil {
				fields.Value = tok
				break
			}
		}
	}
	if fields.Timestamp == "" {
		if ts2, _ := extractTimestamp(rest); ts2 != "" {
			fields.Timestamp = ts2
		}
	}
	return fields, nil
}

func extractTimestamp(line string) (string, string) {
	m := reTimestamp.FindStringSubmatchIndex(line)
	if len(m) >= 4 {
		ts := strings.TrimSpace(line[m[2]:m[3]])
		rest := strings.TrimSpace(line[m[3]:])
		return ts, rest
	}
	m = reSyslogTS.FindStringSubmatchIndex(line)
	if len(m) >= 4 {
		ts := strings.TrimSpace(line[m[2]:m[3]])
		rest := strings.TrimSpace(line[m[3]:])
		return ts, rest
	}
	return "", line
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m[k]); v != "" {
			return v
		}
	}
	return ""
}

type CSVParser struct {
	header []string
}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(line string) (*normalize.SampleFields, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.TrimLeadingSpace = true
	record, err := r.Read()
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, nil
	}
	if p.header == nil && looksLikeHeader(record) {
		p.header = normalizeHeader(record)
		return nil, nil
	}
	fields := &normalize.SampleFields{Extras: map[string]string{}}
	if p.header != nil {
		for i, name := range p.header {
			if i >= len(record) {
				break
			}
			assignField(fields, name, record[i])
		}
	} else {
		switch len(record) {
		case 1:
			fields.Value = record[0]
		case 2:
			fields.StreamID = record[0]
			fields.Value = record[1]
		default:
			fields.Timestamp = record[0]
			fields.StreamID = record[1]
			fields.Value = record[2]
		}
	}
	return fields, nil
}

func looksLikeHeader(record []string) bool {
	for _, v := range record {
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "timestamp", "time", "ts", "stream", "stream_id", "sensor", "value", "val", "sample", "reading":
			return true
		}
	}
	return false
}

func normalizeHeader(record []string) []string {
	out := make([]string, len(record))
	for i, v := range record {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

func assignField(fields *normalize.SampleFields, name string, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	switch name {
	case "timestamp", "time", "ts":
		fields.Timestamp = value
	case "stream", "stream_id", "streamid", "sensor", "metric", "source_id":
		fields.StreamID = value
	case "value", "val", "v", "sample", "reading":
		fields.Value = value
	default:
		if fields.Extras != nil {
			fields.Extras[name] = value
		}
	}
}

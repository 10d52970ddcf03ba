package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"driftwatch/internal/config"
	"driftwatch/internal/model"
)

// SampleFields holds the raw string fields a parser pulled off one line of
// input, before type conversion.
type SampleFields struct {
	Timestamp string
	StreamID  string
	Value     string
	Extras    map[string]string
	Raw       string
}

// Normalize converts parsed fields into a Sample. The value must parse as a
// float64; non-finite parses (NaN, Inf) are passed through unchanged so the
// detector can apply its own reject-before-mutate rule.
func Normalize(fields SampleFields, cfg *config.Config) (model.Sample, error) {
	raw := strings.TrimSpace(fields.Value)
	if raw == "" {
		return model.Sample{}, errors.New("sample has no value field")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("parse value: %w", err)
	}

	stream := strings.TrimSpace(fields.StreamID)
	if stream == "" {
		stream = cfg.Ingest.Parser.DefaultStreamID
	}

	loc := time.UTC
	if cfg.Ingest.Parser.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Ingest.Parser.Timezone); err == nil {
			loc = l
		}
	}

	ts := time.Now().UTC()
	if fields.Timestamp != "" {
		parsed, err := ParseTimestamp(fields.Timestamp, loc)
		if err != nil {
			return model.Sample{}, fmt.Errorf("parse timestamp: %w", err)
		}
		ts = parsed.UTC()
	}

	return model.Sample{
		Timestamp: ts,
		StreamID:  stream,
		Value:     value,
		Raw:       fields.Raw,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z0700",
	"Jan 02 15:04:05",
	"Jan 2 15:04:05",
}

func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if isNumeric(value) {
		if ts, err := parseUnix(value); err == nil {
			return ts, nil
		}
	}
	for _, layout := range timestampLayouts {
		if layout == "Jan 02 15:04:05" || layout == "Jan 2 15:04:05" {
			if t, err := time.ParseInLocation(layout, value, loc); err == nil {
				now := time.Now().In(loc)
				return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
			}
			continue
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}

func isNumeric(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(value) > 0
}

func parseUnix(value string) (time.Time, error) {
	if len(value) >= 13 {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, ms*int64(time.Millisecond)).UTC(), nil
	}
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}

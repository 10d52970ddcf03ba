package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"driftwatch/internal/normalize"
)

func ParseJSONBytes(data []byte) (*normalize.SampleFields, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return ParseJSONMap(obj), nil
}

func ParseJSONMap(obj map[string]interface{}) *normalize.SampleFields {
	fields := &normalize.SampleFields{Extras: map[string]string{}}
	for key, val := range obj {
		fields.Extras[strings.ToLower(key)] = fmt.Sprint(val)
	}
	fields.Timestamp = firstNonEmpty(fields.Extras, "timestamp", "time", "ts")
	fields.StreamID = firstNonEmpty(fields.Extras, "stream", "stream_id", "streamid", "sensor", "metric", "source_id")
	fields.Value = firstNonEmpty(fields.Extras, "value", "val", "v", "sample", "reading")
	return fields
}

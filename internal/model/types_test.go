package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClassificationJSONNullScore(t *testing.T) {
	data, err := json.Marshal(Classification{Value: 7})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"score":null`) {
		t.Fatalf("unscored classification: %s", data)
	}
}

func TestClassificationJSONScored(t *testing.T) {
	data, err := json.Marshal(Classification{Value: 7, Anomaly: true, Score: 3.5, Scored: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"score":3.5`) {
		t.Fatalf("scored classification: %s", data)
	}
}

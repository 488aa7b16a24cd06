package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phil-mansfield/nblist/lib/metrics"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format, level string
		valid         bool
	}{
		{"json", "info", true},
		{"text", "debug", true},
		{"console", "warn", true},
		{"", "", true},
		{"JSON", "ERROR", true},
		{"xml", "info", false},
		{"json", "loud", false},
	}

	for i := range tests {
		_, err := NewLogger(Config{
			Format: tests[i].format, Level: tests[i].level,
			Output: &bytes.Buffer{},
		})
		if (err == nil) != tests[i].valid {
			t.Errorf("%d) Expected valid = %t for format '%s' and level "+
				"'%s', got error %v.", i, tests[i].valid, tests[i].format,
				tests[i].level, err)
		}
	}
}

func TestJSONFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewLogger(Config{Format: "json", Level: "info", Output: buf})
	if err != nil {
		t.Fatalf("Expected valid logger, got error '%s'.", err.Error())
	}

	log.Info("built neighbour list", zap.Int("pairs", 42))
	entry := map[string]interface{}{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON line, got '%s'.", buf.String())
	}
	if entry["msg"] != "built neighbour list" || entry["pairs"] != 42.0 {
		t.Errorf("Expected message and pairs field, got %v.", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Errorf("Expected a timestamp, got %v.", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewLogger(Config{Format: "text", Level: "warn", Output: buf})
	if err != nil {
		t.Fatalf("Expected valid logger, got error '%s'.", err.Error())
	}

	before := warnCount(t)
	log.Info("quiet")
	log.Warn("loud")
	after := warnCount(t)

	if strings.Contains(buf.String(), "quiet") {
		t.Errorf("Expected info entries to be dropped, got '%s'.", buf.String())
	}
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("Expected warn entries to be written, got '%s'.", buf.String())
	}
	if after-before != 1 {
		t.Errorf("Expected one counted warn entry, got %g.", after-before)
	}
}

func warnCount(t *testing.T) float64 {
	m := &dto.Metric{}
	if err := metrics.LogEntriesTotal.WithLabelValues("warn").Write(m); err != nil {
		t.Fatalf("Couldn't read counter: %s", err.Error())
	}
	return m.GetCounter().GetValue()
}

func TestSetL(t *testing.T) {
	defer Set(nil)

	buf := &bytes.Buffer{}
	log, err := NewLogger(Config{Level: "debug", Output: buf})
	if err != nil {
		t.Fatalf("Expected valid logger, got error '%s'.", err.Error())
	}

	Set(log)
	L().Debug("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected L() to use the logger from Set, got '%s'.",
			buf.String())
	}

	Set(nil)
	if L().Core().Enabled(zapcore.ErrorLevel) {
		t.Errorf("Expected Set(nil) to install a no-op logger.")
	}
}

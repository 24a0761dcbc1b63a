package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// TestSetup_JSONOutput はJSON形式でログが出力されることを検証する。
func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Info("draft saved", slog.String("news_id", "a1b2c3d4"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if record["msg"] != "draft saved" {
		t.Errorf("msg = %v, want \"draft saved\"", record["msg"])
	}
	if record["news_id"] != "a1b2c3d4" {
		t.Errorf("news_id = %v, want \"a1b2c3d4\"", record["news_id"])
	}
}

// TestSetup_DebugSuppressed はInfo未満のレベルが出力されないことを検証する。
func TestSetup_DebugSuppressed(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(&buf)

	logger.Debug("should not appear")

	if buf.Len() != 0 {
		t.Errorf("expected no output for debug level, got: %s", buf.String())
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "json stdout",
			config: Config{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
		},
		{
			name: "console stderr",
			config: Config{
				Level:  "debug",
				Format: "console",
				Output: "stderr",
			},
		},
		{
			name: "invalid level falls back to info",
			config: Config{
				Level:  "invalid",
				Format: "json",
				Output: "stdout",
			},
		},
		{
			name: "rotated file",
			config: Config{
				Level:      "info",
				Format:     "json",
				Output:     filepath.Join(t.TempDir(), "api.log"),
				MaxSizeMB:  1,
				MaxBackups: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("Expected non-nil logger")
			}
		})
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})

	logger.
		WithRequestID("req-1").
		WithUserID("user-1").
		WithVideoID("dQw4w9WgXcQ").
		WithField("output", "mindmap").
		Info("generated")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("user_id = %v", entry["user_id"])
	}
	if entry["video_id"] != "dQw4w9WgXcQ" {
		t.Errorf("video_id = %v", entry["video_id"])
	}
	if entry["output"] != "mindmap" {
		t.Errorf("output = %v", entry["output"])
	}
	if entry["message"] != "generated" {
		t.Errorf("message = %v", entry["message"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "warn", Format: "json"})

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("shown")
	if buf.Len() == 0 {
		t.Error("warn should be written at warn level")
	}
}

func TestLogHTTPRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})

	logger.LogHTTPRequest("POST", "/api/transcript", "10.0.0.1", 500, 120*time.Millisecond)

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("5xx should log at error level, got %v", entry["level"])
	}
	if entry["status_code"] != float64(500) {
		t.Errorf("status_code = %v", entry["status_code"])
	}
}

func TestLogLedgerOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})

	logger.LogLedgerOperation("deduct", "user-1", "vid", 5*time.Millisecond, errors.New("boom"))

	entry := decodeLine(t, &buf)
	if entry["level"] != "error" {
		t.Errorf("failed operation should log at error level, got %v", entry["level"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["operation"] != "deduct" {
		t.Errorf("operation = %v", entry["operation"])
	}
}

func TestLogCacheAccessDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})

	logger.LogCacheAccess("vid_session", true)
	if buf.Len() != 0 {
		t.Errorf("cache access is debug level, got %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info("discarded")
	logger.WithError(errors.New("x")).Error("discarded")
}

func TestNewDefaultLogger(t *testing.T) {
	logger, err := NewDefaultLogger()
	if err != nil {
		t.Errorf("NewDefaultLogger() error = %v", err)
	}
	if logger == nil {
		t.Error("Expected non-nil logger from NewDefaultLogger")
	}
}

func BenchmarkLogWithFields(b *testing.B) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		logger.WithFields(map[string]interface{}{
			"video_id": "dQw4w9WgXcQ",
			"tokens":   10,
		}).Info("benchmark message")
	}
}

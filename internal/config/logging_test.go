package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestDualOutputLogging(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("session renewed", "endpoint", "/auth/refresh-token")

	if !strings.Contains(stderr.String(), "session renewed") {
		t.Errorf("stderr output missing message: %q", stderr.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if entry["msg"] != "session renewed" {
		t.Errorf("file msg = %v", entry["msg"])
	}
	if entry["endpoint"] != "/auth/refresh-token" {
		t.Errorf("file endpoint = %v", entry["endpoint"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Debug("noisy detail")
	logger.Info("routine event")

	if stderr.Len() != 0 || file.Len() != 0 {
		t.Errorf("below-level records were written: stderr=%q file=%q", stderr.String(), file.String())
	}
}

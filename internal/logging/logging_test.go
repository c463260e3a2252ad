package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tui.log")

	logger, err := File(path, false)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	logger.Info("price accepted")
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"price accepted"`) {
		t.Fatalf("log file missing info line: %s", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Fatalf("debug line written at info level: %s", out)
	}
}

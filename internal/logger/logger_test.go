package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Development(t *testing.T) {
	log, err := New(true)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}

	// Should not panic
	log.Info("test message")
}

func TestNew_Production(t *testing.T) {
	log, err := New(false)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestMust(t *testing.T) {
	// Should not panic
	log := Must(true)
	if log == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestWithFile_NoPath(t *testing.T) {
	base := Must(false)
	if got := WithFile(base, false, FileConfig{}); got != base {
		t.Error("expected logger unchanged without a file path")
	}
}

func TestWithFile_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasi.log")

	log := WithFile(Must(false), false, FileConfig{Path: path, MaxSizeMB: 1})
	log.Info("written to file")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("expected message in log file, got %q", string(data))
	}
}

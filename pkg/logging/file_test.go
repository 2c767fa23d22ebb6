package logging

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestFileLogger(t *testing.T, cfg FileLoggerConfig) (*FileLogger, string) {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "syftui.log")
	}
	logger, err := NewFileLogger(cfg)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	return logger, cfg.Path
}

func readEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "syftui.log")
	logger, _ := newTestFileLogger(t, FileLoggerConfig{Path: logPath, Format: FormatText})
	defer logger.Close()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}

func TestFileLogger_LogLevels(t *testing.T) {
	tests := []struct {
		level   Level
		present []string
		absent  []string
	}{
		{InfoLevel, []string{"info message", "warn message", "error message"}, []string{"debug message"}},
		{DebugLevel, []string{"debug message", "info message"}, nil},
		{ErrorLevel, []string{"error message"}, []string{"info message", "warn message"}},
	}

	for _, tt := range tests {
		t.Run(LevelString(tt.level), func(t *testing.T) {
			logger, path := newTestFileLogger(t, FileLoggerConfig{Format: FormatText, Level: tt.level})
			ctx := context.Background()
			logger.Debug(ctx, "debug message", nil)
			logger.Info(ctx, "info message", nil)
			logger.Warn(ctx, "warn message", nil)
			logger.Error(ctx, "error message", nil, nil)
			logger.Close()

			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read log file: %v", err)
			}
			for _, s := range tt.present {
				if !strings.Contains(string(content), s) {
					t.Errorf("%q should be present", s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(string(content), s) {
					t.Errorf("%q should be filtered", s)
				}
			}
		})
	}
}

func TestFileLogger_TextFormat(t *testing.T) {
	logger, path := newTestFileLogger(t, FileLoggerConfig{Format: FormatText})
	logger.Info(context.Background(), "item created", Fields{"path": "/docs", "op": "CREATE_FOLDER"})
	logger.Close()

	content, _ := os.ReadFile(path)
	line := string(content)
	if !strings.Contains(line, "[INFO] item created") {
		t.Errorf("line = %q, want level marker and message", line)
	}
	// keys are sorted
	if !strings.Contains(line, "op=CREATE_FOLDER path=/docs") {
		t.Errorf("line = %q, want sorted fields", line)
	}
}

func TestFileLogger_JSONFormat(t *testing.T) {
	logger, path := newTestFileLogger(t, FileLoggerConfig{Format: FormatJSON})
	logger.Error(context.Background(), "backend call failed", errors.New("connection refused"), Fields{"op": "MOVE"})
	logger.Close()

	entry := readEntry(t, path)
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
	if entry["message"] != "backend call failed" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["error"] != "connection refused" {
		t.Errorf("error = %v", entry["error"])
	}
	if entry["op"] != "MOVE" || entry["timestamp"] == nil {
		t.Errorf("entry = %v", entry)
	}
}

func TestFileLogger_FieldsFromAllSources(t *testing.T) {
	logger, path := newTestFileLogger(t, FileLoggerConfig{Format: FormatJSON})

	ctx := ContextWithFields(context.Background(), Fields{"request": "r-1", "component": "ctx"})
	child := logger.WithFields(Fields{"component": "store"})
	child.Info(ctx, "test", Fields{"action": "paste"})
	logger.Close()

	entry := readEntry(t, path)
	if entry["component"] != "store" {
		t.Errorf("component = %v, want logger fields to win over context", entry["component"])
	}
	if entry["request"] != "r-1" || entry["action"] != "paste" {
		t.Errorf("entry = %v", entry)
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	logger, path := newTestFileLogger(t, FileLoggerConfig{
		Format:     FormatText,
		MaxSize:    100,
		MaxBackups: 2,
	})
	child := logger.WithFields(Fields{"component": "store"})

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		logger.Info(ctx, "a message long enough to trigger rotation eventually", nil)
		child.Info(ctx, "same file from a derived logger", nil)
	}
	logger.Close()

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Error("Backup file .1 should exist after rotation")
	}
	if _, err := os.Stat(path + ".3"); err == nil {
		t.Error("Backups beyond MaxBackups should be removed")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Main log file should still exist")
	}
}

func TestFileLogger_WriteAfterClose(t *testing.T) {
	logger, path := newTestFileLogger(t, FileLoggerConfig{Format: FormatText})
	logger.Close()
	logger.Info(context.Background(), "dropped", nil)

	content, _ := os.ReadFile(path)
	if len(content) != 0 {
		t.Errorf("expected empty log, got %q", content)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestFileLogger_ConcurrentWrites(t *testing.T) {
	logger, path := newTestFileLogger(t, FileLoggerConfig{Format: FormatText})
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			l := logger.WithFields(Fields{"goroutine": id})
			for j := 0; j < 100; j++ {
				l.Info(ctx, "concurrent message", Fields{"iteration": j})
			}
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Timeout waiting for concurrent writes")
		}
	}
	logger.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1000 {
		t.Errorf("Expected 1000 log lines, got %d", len(lines))
	}
}

func TestNullLogger(t *testing.T) {
	logger := NewNullLogger()
	ctx := context.Background()

	logger.Debug(ctx, "debug", nil)
	logger.Info(ctx, "info", nil)
	logger.Warn(ctx, "warn", nil)
	logger.Error(ctx, "error", nil, nil)

	if logger.WithFields(Fields{"key": "value"}) == nil {
		t.Error("WithFields should return a logger")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"Warning", WarnLevel},
		{"error", ErrorLevel},
		{"unknown", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := LevelString(tt.level); result != tt.expected {
				t.Errorf("LevelString(%v) = %q, want %q", tt.level, result, tt.expected)
			}
		})
	}
}

package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Format represents the log output format
type Format string

const (
	FormatJSON    Format = "json"
	FormatText    Format = "text"
	FormatConsole Format = "console"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// logFile is the rotating file shared by a logger and its WithFields children
type logFile struct {
	mu   sync.Mutex
	cfg  FileLoggerConfig
	file *os.File
	size int64
}

// FileLogger writes one line per entry to a rotating file
type FileLogger struct {
	out    *logFile
	fields Fields
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	out := &logFile{cfg: config}
	if err := out.open(); err != nil {
		return nil, err
	}
	return &FileLogger{out: out}, nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, DebugLevel, msg, nil, fields)
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, InfoLevel, msg, nil, fields)
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.log(ctx, WarnLevel, msg, nil, fields)
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.log(ctx, ErrorLevel, msg, err, fields)
}

// WithFields returns a logger with additional fields writing to the same file
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{out: l.out, fields: merge(l.fields, fields)}
}

// Close closes the underlying file; derived loggers share it
func (l *FileLogger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.file == nil {
		return nil
	}
	err := l.out.file.Close()
	l.out.file = nil
	return err
}

func (l *FileLogger) log(ctx context.Context, level Level, msg string, err error, fields Fields) {
	if level < l.out.cfg.Level {
		return
	}
	all := merge(FieldsFromContext(ctx), l.fields, fields)

	var line []byte
	if l.out.cfg.Format == FormatJSON {
		var encErr error
		if line, encErr = formatJSON(level, msg, err, all); encErr != nil {
			return
		}
	} else {
		line = formatText(level, msg, err, all)
	}
	l.out.write(line)
}

func (f *logFile) open() error {
	file, err := os.OpenFile(f.cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	f.file = file
	f.size = info.Size()
	return nil
}

func (f *logFile) write(line []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return
	}
	if f.cfg.MaxSize > 0 && f.size >= f.cfg.MaxSize {
		f.rotate()
		if f.file == nil {
			return
		}
	}
	n, _ := f.file.Write(line)
	f.size += int64(n)
}

// rotate shifts path.N to path.N+1, renames the live file to path.1 and
// reopens. Caller holds mu.
func (f *logFile) rotate() {
	f.file.Close()
	f.file = nil

	path := f.cfg.Path
	for i := f.cfg.MaxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", path, i), fmt.Sprintf("%s.%d", path, i+1))
	}
	os.Rename(path, path+".1")
	if f.cfg.MaxBackups > 0 {
		os.Remove(fmt.Sprintf("%s.%d", path, f.cfg.MaxBackups+1))
	}

	f.open()
}

func formatJSON(level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = LevelString(level)
	entry["message"] = msg
	if err != nil {
		entry["error"] = err.Error()
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}
	return append(data, '\n'), nil
}

// formatText renders "timestamp [LEVEL] message error=... k=v" with keys sorted
func formatText(level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(&b, " [%s] %s", LevelString(level), msg)
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

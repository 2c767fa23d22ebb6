package logging

import "io"

// Config selects and configures a logger implementation
type Config struct {
	Enabled bool
	// Format is json, text or console
	Format Format
	Level  Level
	// File switches to a rotating FileLogger; empty logs to Output with zap
	File       string
	MaxSize    int64
	MaxBackups int
	Output     io.Writer
}

// New returns the logger described by cfg
func New(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return Discard, nil
	}
	if cfg.File != "" {
		format := cfg.Format
		if format != FormatJSON {
			format = FormatText
		}
		return NewFileLogger(FileLoggerConfig{
			Path:       cfg.File,
			Format:     format,
			Level:      cfg.Level,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
		})
	}
	return NewZapLogger(ZapLoggerConfig{Format: cfg.Format, Level: cfg.Level, Output: cfg.Output}), nil
}

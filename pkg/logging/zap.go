package logging

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLoggerConfig configures a zap-backed logger
type ZapLoggerConfig struct {
	// Format is console or json
	Format Format
	Level  Level
	// Output defaults to stderr
	Output io.Writer
}

// ZapLogger adapts a zap logger to the Logger interface
type ZapLogger struct {
	z *zap.Logger
}

// NewZapLogger builds a zap core writing to cfg.Output
func NewZapLogger(cfg ZapLoggerConfig) *ZapLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), zapLevel(cfg.Level))
	return &ZapLogger{z: zap.New(core)}
}

// NewZapFromLogger wraps an existing zap logger
func NewZapFromLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.z.Debug(msg, zapFields(ctx, fields)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.z.Info(msg, zapFields(ctx, fields)...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.z.Warn(msg, zapFields(ctx, fields)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	zf := zapFields(ctx, fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.z.Error(msg, zf...)
}

func (l *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{z: l.z.With(zapFields(nil, fields)...)}
}

// Close flushes buffered entries. Sync errors on terminals are ignored.
func (l *ZapLogger) Close() error {
	_ = l.z.Sync()
	return nil
}

func zapFields(ctx context.Context, fields Fields) []zap.Field {
	all := fields
	if ctxFields := FieldsFromContext(ctx); len(ctxFields) > 0 {
		all = merge(ctxFields, fields)
	}
	out := make([]zap.Field, 0, len(all))
	for k, v := range all {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

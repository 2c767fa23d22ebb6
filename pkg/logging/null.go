package logging

import "context"

var _ Logger = NullLogger{}

// Discard is the logger used when logging is disabled
var Discard Logger = NullLogger{}

// NullLogger drops every entry. Components fall back to it when no
// logger is configured, so they never need a nil check.
type NullLogger struct{}

// NewNullLogger returns a NullLogger
func NewNullLogger() NullLogger {
	return NullLogger{}
}

// Debug drops the entry
func (NullLogger) Debug(context.Context, string, Fields) {}

// Info drops the entry
func (NullLogger) Info(context.Context, string, Fields) {}

// Warn drops the entry
func (NullLogger) Warn(context.Context, string, Fields) {}

// Error drops the entry and the error
func (NullLogger) Error(context.Context, string, error, Fields) {}

// WithFields returns the receiver; there is nothing to annotate
func (l NullLogger) WithFields(Fields) Logger { return l }

// Close is a no-op
func (NullLogger) Close() error { return nil }

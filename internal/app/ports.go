package app

// Logger receives structured runtime events from the service.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// nopLogger discards all events.
type nopLogger struct{}

// Debug discards a debug event.
func (nopLogger) Debug(string, ...any) {}

// Info discards an informational event.
func (nopLogger) Info(string, ...any) {}

// Warn discards a warning event.
func (nopLogger) Warn(string, ...any) {}

// Error discards an error event.
func (nopLogger) Error(string, ...any) {}

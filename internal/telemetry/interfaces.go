package telemetry

// Logger is the structured logging surface the engine packages depend on.
// *JSONLogger satisfies it.
type Logger interface {
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// Discard returns a logger that drops everything.
func Discard() Logger {
	return (*JSONLogger)(nil)
}

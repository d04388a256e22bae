package logging

// LogEntry represents a structured log record with fields relevant to
// experiment and LLM-query progress.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Experiment-specific fields
	Task           string // Target property task being processed
	Representation string // Feature representation in use, if any
	Trial          int    // Trial index, zero when not inside a trial

	// General structured data
	Fields map[string]interface{}
}

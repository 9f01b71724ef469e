// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package and is configured from the
// resolved LoggingConfig: level, JSON or text output, and an optional log file.
package logger

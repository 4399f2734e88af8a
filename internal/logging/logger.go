// Package logging constructs the zerolog logger shared by the service.
// The logger is built once in main and passed into components explicitly;
// there is no process-wide singleton.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level      string `json:"level"`       // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"`      // "stdout", "stderr", or a file path
	JSONFormat bool   `json:"json_format"` // structured JSON lines vs console format
}

// New creates a logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stdout
	switch cfg.Output {
	case "", "stdout":
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			output = file
		}
	}

	if !cfg.JSONFormat {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO", "":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

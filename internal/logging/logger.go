// Package logging constructs slog loggers for the boltz CLI and library
// consumers.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New constructs a slog logger using the provided options. Format is
// "console" or "json"; an empty format picks console on a terminal and json
// otherwise.
func New(opts Options) (*slog.Logger, error) {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = DetectFormat(output)
	}

	var handler slog.Handler
	switch format {
	case "console":
		handler = slog.NewTextHandler(output, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(output, handlerOpts)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return slog.New(handler), nil
}

// DetectFormat picks the default log format for a writer: console for
// terminals, json for pipes and files.
func DetectFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "console"
	}
	return "json"
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log level: unsupported value %q", level)
	}
}

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var Log *slog.Logger

// Options controls how Init builds the global logger. Empty fields fall back
// to COCREATE_LOG_LEVEL, COCREATE_LOG_FORMAT and COCREATE_LOG_SINK.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // text|json
	Sink   string // stdout|stderr|discard|file:<path>
}

// Init initializes the global slog logger from env only.
func Init() {
	InitWith(Options{})
}

// InitWithLevel initializes the global logger honoring the provided level.
func InitWithLevel(level string) {
	InitWith(Options{Level: level})
}

// InitWith initializes the global logger from opts, falling back to env.
func InitWith(opts Options) {
	lvl := firstNonEmpty(opts.Level, os.Getenv("COCREATE_LOG_LEVEL"))
	format := firstNonEmpty(opts.Format, os.Getenv("COCREATE_LOG_FORMAT"))
	sink := firstNonEmpty(opts.Sink, os.Getenv("COCREATE_LOG_SINK"))

	hopts := &slog.HandlerOptions{Level: ParseLevel(lvl)}
	w := openSink(sink)
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		Log = slog.New(slog.NewJSONHandler(w, hopts))
		return
	}
	Log = slog.New(slog.NewTextHandler(w, hopts))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openSink(sink string) io.Writer {
	sink = strings.TrimSpace(sink)
	switch {
	case sink == "" || sink == "stdout":
		return os.Stdout
	case sink == "stderr":
		return os.Stderr
	case sink == "discard":
		return io.Discard
	case strings.HasPrefix(sink, "file:"):
		path := strings.TrimPrefix(sink, "file:")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err == nil {
			return f
		}
		// fallback to stdout
		fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", path, err)
	}
	return os.Stdout
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Debug logs with slog-style key/value pairs.
func Debug(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Debug(msg, args...)
}

// Info logs with slog-style key/value pairs.
func Info(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Info(msg, args...)
}

// Warn logs with slog-style key/value pairs.
func Warn(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Warn(msg, args...)
}

// Error logs with slog-style key/value pairs.
func Error(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Error(msg, args...)
}

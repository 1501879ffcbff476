package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Level represents the log level.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format represents the log output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logger configuration.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger wraps slog.Logger with the service's event helpers.
type Logger struct {
	*slog.Logger
	config *Config
}

// New creates a new Logger. A nil config logs INFO as JSON to stdout.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{Level: LevelInfo, Format: FormatJSON}
	}
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if strings.EqualFold(string(cfg.Format), string(FormatText)) {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler), config: cfg}
}

func parseLevel(l Level) slog.Level {
	switch strings.ToUpper(string(l)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault sets this logger as the default slog logger.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), config: l.config}
}

// WithRequestID returns a logger with request_id attribute.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with("request_id", requestID)
}

// WithComponent returns a logger with component attribute.
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithSession returns a logger with session_id attribute.
func (l *Logger) WithSession(sessionID string) *Logger {
	return l.with("session_id", sessionID)
}

// APIRequest logs a served API request.
func (l *Logger) APIRequest(method, path string, statusCode int, duration time.Duration) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "api request",
		"method", method,
		"path", path,
		"status", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// SearchCompleted logs a finished job search.
func (l *Logger) SearchCompleted(query string, total, returned int, fullText bool, duration time.Duration) {
	l.Info("search completed",
		"query", query,
		"total", total,
		"returned", returned,
		"full_text", fullText,
		"duration_ms", duration.Milliseconds(),
	)
}

// MatchCompleted logs a finished matching run.
func (l *Logger) MatchCompleted(poolSize, matchCount, returned, skills int, duration time.Duration) {
	l.Info("match completed",
		"pool_size", poolSize,
		"match_count", matchCount,
		"returned", returned,
		"candidate_skills", skills,
		"duration_ms", duration.Milliseconds(),
	)
}

// IndexRebuilt logs a search index rebuild.
func (l *Logger) IndexRebuilt(rows int, duration time.Duration) {
	l.Info("search index rebuilt",
		"rows", rows,
		"duration_ms", duration.Milliseconds(),
	)
}

// GeminiRequest logs a Gemini API call.
func (l *Logger) GeminiRequest(operation string, inputTokens, outputTokens int, duration time.Duration) {
	l.Info("gemini request",
		"operation", operation,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
		"duration_ms", duration.Milliseconds(),
	)
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return New(&Config{Level: LevelError, Format: FormatText, Output: io.Discard})
}

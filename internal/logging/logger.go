// Package logging configures logrus and carries request-scoped fields through context.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type requestIDKey struct{}

var base = logrus.New()

// Setup sets the level and formatter of the process logger. JSON is used in
// production, text with full timestamps otherwise.
func Setup(level, env string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
	base.SetOutput(os.Stdout)
	if env == "production" {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if err != nil {
		base.WithField("level", level).Warn("unknown log level, using info")
	}
}

// SetOutput redirects the process logger, mainly for tests.
func SetOutput(w io.Writer) { base.SetOutput(w) }

// Base returns the process logger.
func Base() *logrus.Logger { return base }

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides structured logging for services
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger carrying the request id found in ctx.
func NewLogger(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{entry: base.WithField("request_id", requestID)}
}

// Component returns a logger for background work that has no request.
func Component(name string) *Logger {
	return &Logger{entry: base.WithField("component", name)}
}

func (l *Logger) With(key string, value any) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) LogError(operation string, err error) {
	l.entry.WithField("operation", operation).WithError(err).Error("operation failed")
}

func (l *Logger) LogErrorf(operation string, format string, args ...any) {
	l.entry.WithField("operation", operation).Errorf(format, args...)
}

func (l *Logger) LogInfo(operation string, message string) {
	l.entry.WithField("operation", operation).Info(message)
}

func (l *Logger) LogInfof(operation string, format string, args ...any) {
	l.entry.WithField("operation", operation).Infof(format, args...)
}

func (l *Logger) LogWarn(operation string, message string) {
	l.entry.WithField("operation", operation).Warn(message)
}

func (l *Logger) LogWarnf(operation string, format string, args ...any) {
	l.entry.WithField("operation", operation).Warnf(format, args...)
}

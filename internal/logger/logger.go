package logger

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger writes one JSON object per line with the service, hostname, action
// and request id attached to every entry.
type Logger struct {
	service  string
	hostname string
	out      io.Writer
	level    zerolog.Level
	zl       zerolog.Logger
}

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.TimeFieldFormat = time.RFC3339
}

// New creates a logger writing to stdout at the configured level
func New(service, level string) *Logger {
	return NewWithWriter(service, os.Stdout, ParseLevel(level))
}

// NewWithWriter creates a logger writing to w, dropping entries below level
func NewWithWriter(service string, w io.Writer, level zerolog.Level) *Logger {
	hostname, _ := os.Hostname()

	zl := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("hostname", hostname).
		Logger()

	return &Logger{
		service:  service,
		hostname: hostname,
		out:      w,
		level:    level,
		zl:       zl,
	}
}

// ParseLevel maps a config value such as "info" to a zerolog level, defaulting to debug
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

// With returns a copy of the logger reporting under another service name
func (l *Logger) With(service string) *Logger {
	return NewWithWriter(service, l.out, l.level)
}

func (l *Logger) Info(action, message, requestID string, fields map[string]interface{}) {
	l.write(l.zl.Info(), action, message, requestID, fields)
}

func (l *Logger) Debug(action, message, requestID string, fields map[string]interface{}) {
	l.write(l.zl.Debug(), action, message, requestID, fields)
}

func (l *Logger) Warn(action, message, requestID string, fields map[string]interface{}) {
	l.write(l.zl.Warn(), action, message, requestID, fields)
}

// Error logs at error level. err may be nil for validation style failures.
func (l *Logger) Error(action, message, requestID string, err error, fields map[string]interface{}) {
	event := l.zl.Error()
	if err != nil {
		event = event.Dict("error", zerolog.Dict().
			Str("msg", err.Error()).
			Str("stack", string(debug.Stack())))
	}
	l.write(event, action, message, requestID, fields)
}

func (l *Logger) write(event *zerolog.Event, action, message, requestID string, fields map[string]interface{}) {
	if event == nil {
		return
	}
	event.
		Str("action", action).
		Str("request_id", requestID).
		Fields(fields).
		Msg(message)
}

// GenerateRequestID returns a new random request id
func GenerateRequestID() string {
	return uuid.NewString()
}

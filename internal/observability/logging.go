package observability

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across navrouter.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	// WithContext adds the session and request IDs carried by ctx.
	WithContext(ctx context.Context) Logger
	Sync() error
}

// Field is a typed log field.
type Field = zap.Field

// Field constructors.
var (
	String   = zap.String
	Int      = zap.Int
	Error    = zap.Error
	Any      = zap.Any
	Duration = zap.Duration
)

// LogConfig selects the level, encoding and destination of the logger.
type LogConfig struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Format is "json" or "console".
	Format string
	// Output is "stdout" or "stderr".
	Output string
}

// NewLogger builds a zap-backed Logger from cfg.
func NewLogger(cfg LogConfig) (Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = parseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), zapcore.AddSync(outputFor(cfg.Output)), level)
	return NewLoggerFromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))), nil
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func outputFor(output string) io.Writer {
	if output == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

func parseLevel(level string) (zapcore.Level, error) {
	return zapcore.ParseLevel(level)
}

// NewLoggerFromZap adapts an existing zap logger.
func NewLoggerFromZap(logger *zap.Logger) Logger {
	return zapLogger{z: logger}
}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return zapLogger{z: zap.NewNop()}
}

type zapLogger struct {
	z *zap.Logger
}

func (l zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, fields...) }
func (l zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, fields...) }
func (l zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, fields...) }
func (l zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, fields...) }
func (l zapLogger) Sync() error                       { return l.z.Sync() }

func (l zapLogger) With(fields ...Field) Logger {
	return zapLogger{z: l.z.With(fields...)}
}

func (l zapLogger) WithContext(ctx context.Context) Logger {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// ctxKey indexes contextKeys.
type ctxKey int

const (
	sessionIDKey ctxKey = iota
	requestIDKey
)

// contextKeys maps context keys to their log field names, in field order.
var contextKeys = []struct {
	key   ctxKey
	field string
}{
	{key: sessionIDKey, field: "session_id"},
	{key: requestIDKey, field: "request_id"},
}

func contextFields(ctx context.Context) []Field {
	var fields []Field
	for _, k := range contextKeys {
		if v, _ := ctx.Value(k.key).(string); v != "" {
			fields = append(fields, String(k.field, v))
		}
	}
	return fields
}

// ContextWithSessionID attaches a navigation session ID to ctx.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext returns the session ID attached to ctx, if any.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// ContextWithRequestID attaches an HTTP request ID to ctx.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID attached to ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

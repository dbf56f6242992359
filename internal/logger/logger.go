// Package logger provides structured logging on top of zap.
//
// A single global logger writes to stderr so stdout carries only program
// output. The level can be changed at runtime, and every helper takes a
// context so a request-scoped logger stored with ToContext is used when present.
package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps command output free of informational noise.
const DefaultLevel = zapcore.WarnLevel

type contextKey struct{}

var (
	mu          sync.RWMutex
	atomicLevel = zap.NewAtomicLevelAt(DefaultLevel)
	global      = New(atomicLevel)
)

// New creates a console logger writing to stderr at the given level.
// A nil level enables everything from debug up.
func New(level zapcore.LevelEnabler) *zap.SugaredLogger {
	if level == nil {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	return zap.New(core).Sugar()
}

// ParseLogLevel converts a level name into a zap level.
// Unknown names return InfoLevel and false.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	case "fatal":
		return zapcore.FatalLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()

	return global
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.SugaredLogger) {
	mu.Lock()
	defer mu.Unlock()

	global = l
}

// SetLevel changes the global level.
func SetLevel(level zapcore.Level) {
	atomicLevel.SetLevel(level)
}

// ToContext stores l in ctx.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger stored in ctx, or the global logger.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}

	return Logger()
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Debugf(format, args...)
}

// DebugKV logs a message with key-value pairs at debug level.
func DebugKV(ctx context.Context, msg string, kvs ...any) {
	FromContext(ctx).Debugw(msg, kvs...)
}

// InfoKV logs a message with key-value pairs at info level.
func InfoKV(ctx context.Context, msg string, kvs ...any) {
	FromContext(ctx).Infow(msg, kvs...)
}

// WarnKV logs a message with key-value pairs at warn level.
func WarnKV(ctx context.Context, msg string, kvs ...any) {
	FromContext(ctx).Warnw(msg, kvs...)
}

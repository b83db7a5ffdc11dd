package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey struct{}

//nolint:gochecknoglobals // The package exposes a process-wide logger, the same way zap.L() does.
var (
	globalMu     sync.RWMutex
	globalLogger *zap.SugaredLogger
	atomicLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

//nolint:gochecknoinits // The global logger must be usable before configuration is loaded.
func init() {
	globalLogger = New(atomicLevel)
}

// New creates a console logger writing to stderr at the given level.
// A nil level falls back to the package-wide atomic level.
func New(level zapcore.LevelEnabler) *zap.SugaredLogger {
	if level == nil {
		level = atomicLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	return zap.New(core).Sugar()
}

// ParseLogLevel converts a textual level into a zap level.
// It reports false and falls back to info when the text is not recognized.
func ParseLogLevel(text string) (zapcore.Level, bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	// UnmarshalText accepts an empty string as info, which we treat as invalid.
	if text == "" {
		return zapcore.InfoLevel, false
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return zapcore.InfoLevel, false
	}

	return level, true
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.SugaredLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = l
}

// Level returns the current global level.
func Level() zapcore.Level {
	return atomicLevel.Level()
}

// SetLevel changes the global level.
func SetLevel(level zapcore.Level) {
	atomicLevel.SetLevel(level)
}

// IsDebugLevel reports whether debug messages are emitted.
func IsDebugLevel() bool {
	return atomicLevel.Enabled(zapcore.DebugLevel)
}

// ToContext attaches a logger to the context.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger attached to the context, or the global one.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}

	return Logger()
}

// WithKV returns a context whose logger carries the given key-value pairs.
func WithKV(ctx context.Context, kvs ...any) context.Context {
	return ToContext(ctx, FromContext(ctx).With(kvs...))
}

// Named returns a context whose logger has the given name segment appended.
func Named(ctx context.Context, name string) context.Context {
	return ToContext(ctx, FromContext(ctx).Named(name))
}

// Debug logs a message at debug level.
func Debug(ctx context.Context, args ...any) {
	FromContext(ctx).Debug(args...)
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Debugf(format, args...)
}

// DebugKV logs a message with key-value pairs at debug level.
func DebugKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Debugw(message, kvs...)
}

// Info logs a message at info level.
func Info(ctx context.Context, args ...any) {
	FromContext(ctx).Info(args...)
}

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Infof(format, args...)
}

// InfoKV logs a message with key-value pairs at info level.
func InfoKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Infow(message, kvs...)
}

// Warn logs a message at warn level.
func Warn(ctx context.Context, args ...any) {
	FromContext(ctx).Warn(args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Warnf(format, args...)
}

// WarnKV logs a message with key-value pairs at warn level.
func WarnKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Warnw(message, kvs...)
}

// Error logs a message at error level.
func Error(ctx context.Context, args ...any) {
	FromContext(ctx).Error(args...)
}

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Errorf(format, args...)
}

// ErrorKV logs a message with key-value pairs at error level.
func ErrorKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Errorw(message, kvs...)
}

// LogKV logs a message with key-value pairs at an arbitrary level.
func LogKV(ctx context.Context, level zapcore.Level, message string, kvs ...any) {
	FromContext(ctx).Logw(level, message, kvs...)
}

// Fatal logs a message and exits the process.
func Fatal(ctx context.Context, args ...any) {
	FromContext(ctx).Fatal(args...)
}

// Fatalf logs a formatted message and exits the process.
func Fatalf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Fatalf(format, args...)
}

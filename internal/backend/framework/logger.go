package framework

import (
	"go.uber.org/zap"

	"github.com/oshokin/aigc-client/internal/logger"
)

// leveledLogger adapts the application logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log *zap.SugaredLogger
}

func newLeveledLogger() *leveledLogger {
	return &leveledLogger{log: logger.Logger().Named("retryablehttp")}
}

// Error implements retryablehttp.LeveledLogger.
func (l *leveledLogger) Error(msg string, keysAndValues ...any) {
	l.log.Errorw(msg, keysAndValues...)
}

// Info implements retryablehttp.LeveledLogger.
func (l *leveledLogger) Info(msg string, keysAndValues ...any) {
	l.log.Infow(msg, keysAndValues...)
}

// Debug implements retryablehttp.LeveledLogger.
func (l *leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

// Warn implements retryablehttp.LeveledLogger.
func (l *leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warnw(msg, keysAndValues...)
}

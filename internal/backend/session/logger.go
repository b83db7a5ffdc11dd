package session

import (
	"go.uber.org/zap"

	"github.com/oshokin/aigc-client/internal/logger"
)

// restyLogger routes resty's own diagnostics to the application logger.
type restyLogger struct {
	log *zap.SugaredLogger
}

func newLogger() *restyLogger {
	return &restyLogger{log: logger.Logger().Named("resty")}
}

// Errorf implements resty.Logger.
func (l *restyLogger) Errorf(format string, v ...any) {
	l.log.Errorf(format, v...)
}

// Warnf implements resty.Logger.
func (l *restyLogger) Warnf(format string, v ...any) {
	l.log.Warnf(format, v...)
}

// Debugf implements resty.Logger.
func (l *restyLogger) Debugf(format string, v ...any) {
	l.log.Debugf(format, v...)
}

package engine

import (
	sdklog "go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

// sdkLogger routes the Temporal SDK's internal logging through the
// application's zap logger.
type sdkLogger struct {
	sugar *zap.SugaredLogger
}

func newSDKLogger(logger *zap.Logger) sdklog.Logger {
	return &sdkLogger{sugar: logger.Named("temporal").WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *sdkLogger) Debug(msg string, keyvals ...interface{}) {
	l.sugar.Debugw(msg, keyvals...)
}

func (l *sdkLogger) Info(msg string, keyvals ...interface{}) {
	l.sugar.Infow(msg, keyvals...)
}

func (l *sdkLogger) Warn(msg string, keyvals ...interface{}) {
	l.sugar.Warnw(msg, keyvals...)
}

func (l *sdkLogger) Error(msg string, keyvals ...interface{}) {
	l.sugar.Errorw(msg, keyvals...)
}

// Package log provides centralized logging functionality using zap logger.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger
var baseLogger *zap.Logger

// Init initializes the package-level logger.
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	baseLogger = zapLogger
	log = zapLogger.Sugar()
	return nil
}

func ensure() *zap.SugaredLogger {
	if log == nil {
		baseLogger, _ = zap.NewProduction(zap.AddCallerSkip(1))
		log = baseLogger.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries.
func Sync() {
	if log != nil {
		log.Sync()
	}
}

func Debug(args ...any)                 { ensure().Debug(args...) }
func Debugf(format string, args ...any) { ensure().Debugf(format, args...) }
func Info(args ...any)                  { ensure().Info(args...) }
func Infof(format string, args ...any)  { ensure().Infof(format, args...) }
func Warn(args ...any)                  { ensure().Warn(args...) }
func Warnf(format string, args ...any)  { ensure().Warnf(format, args...) }
func Error(args ...any)                 { ensure().Error(args...) }
func Errorf(format string, args ...any) { ensure().Errorf(format, args...) }
func Fatalf(format string, args ...any) { ensure().Fatalf(format, args...) }

// Package clog provides the logging interface used across the engine,
// the reified-rule activator, and the CLI.
//
// Grounded on clog/clog.go (teacher): the same Logger interface, package-
// level SetLogger/V/SetV surface, and the convention of a default
// implementation wired in at package init. The default backend here is
// go.uber.org/zap's SugaredLogger instead of the teacher's raw log.Printf,
// per SPEC_FULL.md §1.1.
package clog

import "go.uber.org/zap"

// Logger is the clog logging interface (same shape as the teacher's).
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

var logger Logger = newZapLogger()

// SetLogger sets the clog logging implementation.
func SetLogger(l Logger) { logger = l }

var verbosity int

// V returns whether the current clog verbosity is at or above level.
func V(level int) bool { return verbosity >= level }

// SetV sets the clog verbosity level (the REPL's `:debug` toggle adjusts
// this at runtime).
func SetV(level int) { verbosity = level }

// Infof logs information level messages.
func Infof(format string, args ...interface{}) {
	if logger != nil {
		logger.Infof(format, args...)
	}
}

// Warningf logs warning level messages.
func Warningf(format string, args ...interface{}) {
	if logger != nil {
		logger.Warningf(format, args...)
	}
}

// Errorf logs error level messages.
func Errorf(format string, args ...interface{}) {
	if logger != nil {
		logger.Errorf(format, args...)
	}
}

// Fatalf logs fatal messages and terminates the program.
func Fatalf(format string, args ...interface{}) {
	if logger != nil {
		logger.Fatalf(format, args...)
	}
}

// zapLogger backs the default clog.Logger with a zap.SugaredLogger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func newZapLogger() zapLogger {
	z, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on a broken encoder/sink config,
		// which can't happen with the zero-value defaults used here.
		panic(err)
	}
	return zapLogger{sugar: z.Sugar()}
}

func (z zapLogger) Infof(format string, args ...interface{})    { z.sugar.Infof(format, args...) }
func (z zapLogger) Warningf(format string, args ...interface{}) { z.sugar.Warnf(format, args...) }
func (z zapLogger) Errorf(format string, args ...interface{})   { z.sugar.Errorf(format, args...) }
func (z zapLogger) Fatalf(format string, args ...interface{})   { z.sugar.Fatalf(format, args...) }

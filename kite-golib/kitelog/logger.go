// Package kitelog provides the logging sink handed to the analysis engine.
// Nothing in this package is global: callers construct a Logger and pass it down explicitly.
package kitelog

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Interface encapsulates the relevant methods of log.Logger
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Logger encapsulates a structured zap logger and a Durations tracker
type Logger struct {
	sugar     *zap.SugaredLogger
	Durations Durations
}

// New wraps the provided zap logger
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewDevelopment returns a Logger writing human readable lines to stderr at debug level
func NewDevelopment() (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(l), nil
}

// Nop returns a Logger that discards everything
func Nop() *Logger {
	return New(zap.NewNop())
}

// With returns a derived Logger carrying the given key/value pairs on every line
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	l.sugar.Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debugf logs at debug level
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Warnf logs at warn level
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Package logger builds the zap loggers injected into every component.
//
// Components take a *zap.SugaredLogger in their constructor and name it after
// themselves (lggr.Named("signature")). Library defaults use Nop; tests use zaptest.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr at the given level
// ("debug", "info", "warn", "error").
func New(level string) (*zap.SugaredLogger, error) {
	return NewWith(level, func(*zap.Config) {})
}

// NewWith returns a logger from a modified zap development config.
func NewWith(level string, cfgFn func(*zap.Config)) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfgFn(&cfg)

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns lggr, or a Nop logger when lggr is nil.
func OrNop(lggr *zap.SugaredLogger) *zap.SugaredLogger {
	if lggr == nil {
		return Nop()
	}
	return lggr
}

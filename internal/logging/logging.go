// Package logging provides the shared zap-based logger for the planning engine.
// Components receive an injected *zap.SugaredLogger; Nop is the default so
// library consumers that do not care about logs pay nothing.
package logging

import (
	"go.uber.org/zap"
)

// New builds a logger. Debug mode uses the human-readable development
// encoder; otherwise production JSON output at info level.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Named returns a component-scoped child logger, tolerating a nil parent.
func Named(log *zap.SugaredLogger, component string) *zap.SugaredLogger {
	if log == nil {
		return Nop()
	}
	return log.Named(component)
}

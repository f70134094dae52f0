// Package logging builds the zap loggers used by the drivers.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr so stdout stays free for reports.
// Development output is console-encoded; production output is JSON.
func New(debug, production bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if production {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// Install replaces zap's global logger and returns a function restoring the previous one.
func Install(l *zap.Logger) func() {
	return zap.ReplaceGlobals(l)
}

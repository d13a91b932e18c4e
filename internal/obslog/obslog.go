// Package obslog wraps go.uber.org/zap with the two encoder configurations
// this repository needs: a human-readable console one for local runs and a
// Stackdriver-shaped one (via github.com/blendle/zapdriver) for production,
// following the same "build once, .Named() per component" convention
// go-coffee's own logger package uses.
package obslog

import (
	"github.com/blendle/zapdriver"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the root logger for the orchestrator and its collaborators.
// production selects zapdriver's encoder; otherwise a development console
// encoder is used.
func New(production bool) (*zap.Logger, error) {
	if production {
		cfg := zapdriver.NewProductionConfig()
		return cfg.Build()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}

// Named returns a sub-logger tagged with component, the convention every
// package in this repository uses instead of passing ad-hoc string prefixes.
func Named(base *zap.Logger, component string) *zap.Logger {
	return base.Named(component)
}

// Noop returns a logger that discards everything, for tests that don't care
// about log output but still need to satisfy a *zap.Logger-shaped field.
func Noop() *zap.Logger {
	return zap.NewNop()
}

// Package rlog wires go.uber.org/zap into the structured-logging shape
// this module's components expect: checksum.Logger's Warnf, and the
// event-style listeners pkg/resolve, pkg/deploy and pkg/connector accept.
//
// Grounded on storj-storj's zap.Logger usage across its services
// (e.g. certificate/rpcerrs/log_test.go's zap.NewDevelopmentConfig) for
// the logger construction style; this module keeps the same library
// without carrying over storj's own wrapper types, since none of them
// are exercised elsewhere in this retrieval pack.
package rlog

import (
	"go.uber.org/zap"
)

// New builds a zap.Logger: development config (console encoding, debug
// level) when dev is true, production config (JSON encoding, info
// level) otherwise.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Sugar adapts a *zap.Logger to the Warnf-shaped Logger interface
// pkg/checksum.Decide accepts, so a checksum WARN-policy diagnostic
// lands in the caller's structured log instead of being silently
// dropped.
type Sugar struct {
	s *zap.SugaredLogger
}

// NewSugar wraps l.
func NewSugar(l *zap.Logger) Sugar { return Sugar{s: l.Sugar()} }

// Warnf implements pkg/checksum.Logger.
func (s Sugar) Warnf(format string, args ...interface{}) { s.s.Warnf(format, args...) }

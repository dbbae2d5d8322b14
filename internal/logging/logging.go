package logging

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a production zap logger at the given level. Unknown levels
// fall back to info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(levelFromString(level))

	return cfg.Build()
}

func levelFromString(value string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(value)))); err != nil {
		return zapcore.InfoLevel
	}

	return lvl
}

type ctxKey int8

const ctxKeyLogger ctxKey = iota

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// FromContext returns the request scoped logger, or a no-op logger when
// none was injected.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(ctxKeyLogger).(*zap.SugaredLogger); ok {
		return logger
	}

	return zap.NewNop().Sugar()
}

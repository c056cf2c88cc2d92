// Package logger exposes the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger for the given environment. Production gets
// JSON output at info level; "test" stays quiet at warn level; everything
// else gets a human-readable console encoder with debug enabled.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		switch env {
		case "production":
			base, err = zap.NewProduction()
		case "test":
			cfg := zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			base, err = cfg.Build()
		default:
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development logger
// if Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Call on shutdown.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

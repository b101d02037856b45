package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kidpech/user_service/internal/config"
)

// New builds a zap logger according to env. A non-empty cfg.Level
// overrides the env default (debug in development, info otherwise).
func New(env string, cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if env == "development" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

// WithRequestID attaches request context to logger.
func WithRequestID(logger *zap.Logger, requestID string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	if requestID == "" {
		return logger
	}
	return logger.With(zap.String("request_id", requestID))
}

// ReplaceGlobals routes zap.L() to logger.
func ReplaceGlobals(logger *zap.Logger) {
	zap.ReplaceGlobals(logger)
}

// Sync flushes logger.
func Sync(logger *zap.Logger) {
	if logger == nil {
		return
	}
	_ = logger.Sync()
}

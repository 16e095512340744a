package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger for the given environment. Production environments
// get JSON output; everything else gets a colored console encoder. An invalid
// level string falls back to info.
func New(env, level string) *zap.Logger {
	var cfg zap.Config
	if isProduction(env) {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// Discard returns a logger that drops all output. Useful for tests.
func Discard() *zap.Logger {
	return zap.NewNop()
}

func isProduction(env string) bool {
	switch strings.ToLower(env) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(levelFromEnv(zapcore.InfoLevel))
	var err error
	L, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
}

// levelFromEnv reads LOG_LEVEL (debug, info, warn, error); anything else keeps the fallback.
func levelFromEnv(fallback zapcore.Level) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return fallback
	}
	return lvl
}

// WithComponent returns a logger tagged with a component field (handler, service, mq, worker).
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}

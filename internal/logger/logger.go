package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log      = zap.NewNop()
	fallback = zap.NewNop()
	once     sync.Once
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// Init builds the process loggers. fallbackPath, when set, is an extra
// append-only sink for verification codes whose e-mail could not be sent.
func Init(env, fallbackPath string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		l, err := config.Build(zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
		log = l

		if fallbackPath != "" {
			fb := zap.NewProductionConfig()
			fb.OutputPaths = []string{fallbackPath}
			fb.EncoderConfig.TimeKey = "timestamp"
			fb.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			if f, err := fb.Build(); err == nil {
				fallback = f
			} else {
				log.Warn("fallback log disabled", zap.String("path", fallbackPath), zap.Error(err))
			}
		}
	})
}

// Set replaces the process logger. Tests use it with zaptest/observer.
func Set(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

func GetLogger() *zap.Logger {
	return log
}

// Fallback returns the logger used as the recovery channel for undelivered codes.
func Fallback() *zap.Logger {
	return fallback
}

func Sync() {
	_ = log.Sync()
	_ = fallback.Sync()
}

// WithContext adds the request id carried by ctx, if any.
func WithContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		return log.With(zap.String("request_id", reqID))
	}
	// gin.Context stores keys as plain strings
	if reqID, ok := ctx.Value(string(RequestIDKey)).(string); ok && reqID != "" {
		return log.With(zap.String("request_id", reqID))
	}
	return log
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

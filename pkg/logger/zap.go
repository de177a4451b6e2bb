package logger

import (
	"os"

	"github.com/turahe/kuha-go/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newZapLogger builds the zap.Logger described by config.Log: JSON
// encoding to stderr, optionally teed to a rotating file via lumberjack.
func newZapLogger() *zap.Logger {
	cfg := config.GetConfig().Log

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		_ = level.Set(cfg.Level)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level),
	}

	if cfg.FileEnabled && cfg.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename: cfg.FilePath,
			MaxSize:  orDefault(cfg.FileSize, 100),
			MaxAge:   cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress: cfg.FileCompress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	stacktraceLevel := zapcore.ErrorLevel
	if cfg.StacktraceLevel != "" {
		_ = stacktraceLevel.Set(cfg.StacktraceLevel)
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(stacktraceLevel),
	)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

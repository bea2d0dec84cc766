// Package logger builds the zap logger shared by the commands and the server.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const name = "pathfinder"

// New builds the process logger. Console encoding is used unless json is set;
// debug lowers the level and adds stack traces to error entries.
func New(json bool, debug bool) (*zap.Logger, error) {
	cfg := zap.Config{
		Encoding:          "console",
		Level:             zap.NewAtomicLevelAt(zapcore.InfoLevel),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
		EncoderConfig:     encoderConfig(json),
	}

	if json {
		cfg.Encoding = "json"
	}

	if debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
		cfg.DisableStacktrace = false
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.Named(name), nil
}

func encoderConfig(json bool) zapcore.EncoderConfig {
	enc := zapcore.EncoderConfig{
		MessageKey:     "step",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	if json {
		enc.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc.EncodeDuration = zapcore.MillisDurationEncoder
	}

	return enc
}

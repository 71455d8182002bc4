package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Options struct {
	Level  string
	Format string
	// OutputPaths defaults to stderr so command output on stdout stays clean.
	OutputPaths []string
}

func New(opts Options) (*zap.Logger, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}

func buildConfig(opts Options) (zap.Config, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zap.Config{}, err
	}

	encoding := strings.ToLower(strings.TrimSpace(opts.Format))
	switch encoding {
	case "", FormatConsole:
		encoding = FormatConsole
	case FormatJSON:
	default:
		return zap.Config{}, fmt.Errorf("unsupported log format %q", opts.Format)
	}

	outputs := opts.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoderLevel := zapcore.CapitalLevelEncoder
	if encoding == FormatJSON {
		encoderLevel = zapcore.LowercaseLevelEncoder
	}

	return zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			TimeKey:        "timestamp",
			CallerKey:      "caller",
			EncodeLevel:    encoderLevel,
			EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339),
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
	}, nil
}

func ParseLevel(raw string) (zapcore.Level, error) {
	if strings.TrimSpace(raw) == "" {
		return zapcore.WarnLevel, nil
	}

	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level %q", raw)
	}

	return level, nil
}

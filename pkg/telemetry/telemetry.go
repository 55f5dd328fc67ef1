package telemetry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink forwards telemetry events to a structured zap logger. It satisfies
// the Telemetry interfaces the auth and dashboard components accept, so a
// single sink can observe the whole application.
type Sink struct {
	logger *zap.Logger
}

// Options configures the sink's underlying logger.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Format is "json" or "console". Defaults to json.
	Format string
}

// New builds a Sink with its own zap logger.
func New(opts Options) (*Sink, error) {
	var config zap.Config
	if opts.Format == "console" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(parseLevel(opts.Level))

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("telemetry: build logger: %w", err)
	}
	return &Sink{logger: logger}, nil
}

// FromLogger wraps an existing zap logger. Useful in tests and when the
// application already owns a logger.
func FromLogger(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{logger: logger}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Record logs one event with its payload as structured fields. Events whose
// name ends in "_error" log at warn so operators can alert on them without
// parsing payloads.
func (s *Sink) Record(_ context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload))
	for key, value := range payload {
		fields = append(fields, zap.Any(key, value))
	}
	if isErrorEvent(event) {
		s.logger.Warn(event, fields...)
		return
	}
	s.logger.Info(event, fields...)
}

func isErrorEvent(event string) bool {
	const suffix = "_error"
	return len(event) >= len(suffix) && event[len(event)-len(suffix):] == suffix
}

// Sync flushes buffered entries. Call before process exit.
func (s *Sink) Sync() error {
	return s.logger.Sync()
}

package loggers

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap delivers metrics as structured records through a zap logger, one
// record per Write with one field per metric.
type Zap struct {
	logger *zap.Logger
}

// NewZap returns a Zap metric logger writing through the argument
// logger. If logger is nil, a production JSON logger writing to
// standard error is built.
func NewZap(logger *zap.Logger) (*Zap, error) {
	if logger == nil {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		built, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("newZap: could not build logger: %w", err)
		}
		logger = built
	}

	return &Zap{logger: logger}, nil
}

// Write logs one set of metrics as a single structured record
func (z *Zap) Write(metrics Metrics) error {
	fields := make([]zap.Field, 0, len(metrics))
	for _, key := range sortedKeys(metrics) {
		fields = append(fields, zap.Any(key, metrics[key]))
	}
	z.logger.Info("metrics", fields...)
	return nil
}

// Close flushes any buffered records. Sync errors on terminal
// destinations are reported as-is; callers logging to a terminal may
// ignore them.
func (z *Zap) Close() error {
	return z.logger.Sync()
}

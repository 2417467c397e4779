package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "LANSCAN_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks LANSCAN_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(level)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the LANSCAN_LOG_LEVEL
// environment variable.
func InitializeFromEnv() error {
	return Initialize("")
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Silent until initialized so library use never prints
		logger = zap.NewNop()
	}
	return logger
}

// SetLogger replaces the global logger. Intended for tests and embedding.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Named returns a child of the global logger tagged with a component name.
func Named(component string) *zap.Logger {
	return GetLogger().With(zap.String("component", component))
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogScanState logs a sweep coordinator state transition
func LogScanState(from, to string) {
	Debug("Scan state changed",
		zap.String("from", from),
		zap.String("to", to),
	)
}

// LogProbe logs the outcome of a single liveness probe
func LogProbe(addr string, alive bool, err error) {
	fields := []zap.Field{
		zap.String("addr", addr),
		zap.Bool("alive", alive),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	Debug("Liveness probe", fields...)
}

// LogRegression logs a latency increase between two scans
func LogRegression(addr string, previousMs, currentMs int64) {
	Warn("Latency increased",
		zap.String("addr", addr),
		zap.Int64("previous_ms", previousMs),
		zap.Int64("current_ms", currentMs),
	)
}

// LogScanSummary logs the totals of a finished scan
func LogScanSummary(subnet string, devices int, duration time.Duration, partial bool) {
	Info("Scan complete",
		zap.String("subnet", subnet),
		zap.Int("devices", devices),
		zap.Duration("duration", duration),
		zap.Bool("partial", partial),
	)
}

// LogConnection logs live feed client connection events
func LogConnection(remoteAddr, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

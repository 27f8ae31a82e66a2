package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environments with a dedicated output format. Any other value gets the
// colored development console.
const (
	EnvProduction = "production"
	EnvCLI        = "cli"
)

// AppName is attached to every production log line.
const AppName = "trip-stitcher"

var globalLogger *zap.Logger

// Init initializes the global logger.
// "production" writes JSON tagged with the app name, "cli" writes plain
// console lines to stderr without timestamps or callers so stdout stays
// clean for command output, and everything else gets pretty console logs.
// An unknown level is an error rather than a silent fallback.
func Init(environment string, level string) error {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logger: invalid level %q: %w", level, err)
	}

	config := newConfig(environment)
	config.Level = zap.NewAtomicLevelAt(l)

	logger, err := config.Build()
	if err != nil {
		return err
	}

	globalLogger = logger
	return nil
}

func newConfig(environment string) zap.Config {
	switch environment {
	case EnvProduction:
		config := zap.NewProductionConfig()
		config.InitialFields = map[string]interface{}{"app": AppName}
		return config
	case EnvCLI:
		config := zap.NewDevelopmentConfig()
		config.OutputPaths = []string{"stderr"}
		config.DisableCaller = true
		config.DisableStacktrace = true
		config.EncoderConfig.TimeKey = ""
		return config
	default:
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return config
	}
}

// Get returns the global logger instance.
// If not initialized, it returns a no-op logger to prevent panics.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Sync flushes any buffered log entries.
func Sync() {
	if globalLogger != nil {
		globalLogger.Sync()
	}
}

// Named returns a child logger for one component, such as an outbound client.
func Named(component string) *zap.Logger {
	return Get().Named(component)
}

// ForItinerary returns a child logger tagged with the itinerary id.
func ForItinerary(id string, fields ...zap.Field) *zap.Logger {
	return Get().With(append([]zap.Field{zap.String("itinerary_id", id)}, fields...)...)
}

// ForRequest tags an itinerary logger with the ray id of the request that
// touched it. An empty ray id is left out.
func ForRequest(itineraryID, rayID string) *zap.Logger {
	if rayID == "" {
		return ForItinerary(itineraryID)
	}
	return ForItinerary(itineraryID, zap.String("ray_id", rayID))
}

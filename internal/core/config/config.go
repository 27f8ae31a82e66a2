package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the snapshot store configuration.
	Redis RedisConfig `mapstructure:",squash"`

	// Engine holds the continuity engine tunables.
	Engine EngineConfig `mapstructure:",squash"`

	// Extractor holds the document extraction service configuration.
	Extractor ExtractorConfig `mapstructure:",squash"`
}

// RedisConfig configures where itinerary snapshots and locks live.
type RedisConfig struct {
	// URL is the Redis connection string. When empty, an in-process store is used.
	URL string `mapstructure:"REDIS_URL"`
	// SnapshotTTL bounds how long an untouched itinerary is kept. 0 keeps it forever.
	SnapshotTTL time.Duration `mapstructure:"ITINERARY_TTL" default:"0s"`
	// LockTTL is how long a per-itinerary lock survives a crashed holder.
	LockTTL time.Duration `mapstructure:"LOCK_TTL" default:"30s"`
	// LockWait is how long a writer waits for a busy itinerary.
	LockWait time.Duration `mapstructure:"LOCK_WAIT" default:"5s"`
}

// EngineConfig mirrors continuity.Config so it can be set from the environment.
type EngineConfig struct {
	MinTransferDuration  time.Duration `mapstructure:"ENGINE_MIN_TRANSFER_DURATION" default:"15m"`
	SynthesisConfidence  float64       `mapstructure:"ENGINE_SYNTHESIS_CONFIDENCE" default:"0.4"`
	OverlapTolerance     time.Duration `mapstructure:"ENGINE_OVERLAP_TOLERANCE" default:"0s"`
	ProximityMeters      float64       `mapstructure:"ENGINE_PROXIMITY_METERS" default:"250"`
	MinContainmentLength int           `mapstructure:"ENGINE_MIN_CONTAINMENT_LENGTH" default:"3"`
	// Matcher selects how locations are compared: fuzzy, exact or proximity.
	Matcher string `mapstructure:"ENGINE_MATCHER" default:"fuzzy"`
}

// ExtractorConfig points at the service that turns documents into segments.
type ExtractorConfig struct {
	// URL is the base URL of the extraction service. Imports are disabled when empty.
	URL string `mapstructure:"EXTRACTOR_URL"`
	// Timeout bounds a single extraction request.
	Timeout time.Duration `mapstructure:"EXTRACTOR_TIMEOUT" default:"30s"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate checks value ranges that tags cannot express.
func (c *AppConfig) validate() error {
	if c.Engine.SynthesisConfidence <= 0 || c.Engine.SynthesisConfidence > 1 {
		return fmt.Errorf("invalid configuration: ENGINE_SYNTHESIS_CONFIDENCE must be in (0,1], got %v", c.Engine.SynthesisConfidence)
	}
	if c.Engine.MinTransferDuration <= 0 {
		return fmt.Errorf("invalid configuration: ENGINE_MIN_TRANSFER_DURATION must be positive, got %s", c.Engine.MinTransferDuration)
	}
	switch c.Engine.Matcher {
	case "fuzzy", "exact", "proximity":
	default:
		return fmt.Errorf("invalid configuration: ENGINE_MATCHER must be fuzzy, exact or proximity, got %q", c.Engine.Matcher)
	}
	if c.Redis.LockTTL <= 0 {
		return fmt.Errorf("invalid configuration: LOCK_TTL must be positive, got %s", c.Redis.LockTTL)
	}
	return nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

package logward

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// ErrEnvNotValid reports configuration loaded from the environment that
// failed validation.
var ErrEnvNotValid = errors.New("environment variables not valid")

const (
	defaultConsoleLevel      = "INFO"
	defaultFileLevel         = "DEBUG"
	defaultLogsDir           = "logs"
	defaultRotationCheckSecs = 300
	defaultBackupCount       = 5
	defaultMaxBytes          = 10 * 1024 * 1024
)

// Config holds the logging settings, sourced once at process start from
// environment variables. Zero values are filled with the documented defaults
// by LoadConfig and DefaultConfig.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"logward"`
	AppVersion  string `env:"APP_VERSION" envDefault:"0.1.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"production"`

	// ConsoleLevel and FileLevel are independent thresholds for the colorized
	// console output and the per-category JSON files.
	ConsoleLevel string `env:"CONSOLE_LOG_LEVEL" envDefault:"INFO"`
	FileLevel    string `env:"FILE_LOG_LEVEL" envDefault:"DEBUG"`

	// Dir is the root of the log tree: Dir/{error,app,debug,security}.
	Dir string `env:"LOG_DIR" envDefault:"logs"`

	// RotationCheckInterval is the number of seconds between date checks of
	// the daily rotator.
	RotationCheckInterval int `env:"LOG_ROTATION_TIMEOUT" envDefault:"300"`

	// BackupCount is the number of archived .hist.log files kept per log name.
	BackupCount int `env:"LOG_BACKUP_COUNT" envDefault:"5"`

	// MaxBytes is the intra-day overflow threshold: a current file growing
	// past it is archived early without waiting for the date to change.
	MaxBytes int64 `env:"LOG_MAX_BYTES" envDefault:"10485760"`

	// MaxLogRate caps emitted records per second. Zero disables the cap.
	MaxLogRate int `env:"LOG_MAX_RATE" envDefault:"0"`

	// NoColor disables ANSI colors on the console output.
	NoColor bool `env:"LOG_NO_COLOR" envDefault:"false"`

	// ConsoleOutput overrides the console destination. Defaults to os.Stdout.
	// Used by tests and embedders; not settable from the environment.
	ConsoleOutput io.Writer `env:"-"`
}

// DefaultConfig returns the configuration used when no environment variables
// are set.
func DefaultConfig() Config {
	return Config{
		AppName:               "logward",
		AppVersion:            "0.1.0",
		Environment:           "production",
		ConsoleLevel:          defaultConsoleLevel,
		FileLevel:             defaultFileLevel,
		Dir:                   defaultLogsDir,
		RotationCheckInterval: defaultRotationCheckSecs,
		BackupCount:           defaultBackupCount,
		MaxBytes:              defaultMaxBytes,
	}
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s", ErrEnvNotValid, err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every offending variable in a
// single error.
func (c Config) Validate() error {
	envError := make([]string, 0)

	if _, err := ParseLevel(c.ConsoleLevel); err != nil {
		envError = append(envError, "CONSOLE_LOG_LEVEL is not a valid log level")
	}
	if _, err := ParseLevel(c.FileLevel); err != nil {
		envError = append(envError, "FILE_LOG_LEVEL is not a valid log level")
	}
	if c.Dir == "" {
		envError = append(envError, "LOG_DIR cannot be empty")
	}
	if c.RotationCheckInterval <= 0 {
		envError = append(envError, "LOG_ROTATION_TIMEOUT must be a positive number of seconds")
	}
	if c.BackupCount < 0 {
		envError = append(envError, "LOG_BACKUP_COUNT cannot be negative")
	}
	if c.MaxBytes < 0 {
		envError = append(envError, "LOG_MAX_BYTES cannot be negative")
	}
	if c.MaxLogRate < 0 {
		envError = append(envError, "LOG_MAX_RATE cannot be negative")
	}

	if len(envError) > 0 {
		return fmt.Errorf("%w: %s", ErrEnvNotValid, strings.Join(envError, ", "))
	}
	return nil
}

// ConsoleZerologLevel returns the console threshold as a zerolog level.
// Unparseable values fall back to info.
func (c Config) ConsoleZerologLevel() zerolog.Level {
	level, err := ParseLevel(c.ConsoleLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// FileZerologLevel returns the file threshold as a zerolog level.
// Unparseable values fall back to info.
func (c Config) FileZerologLevel() zerolog.Level {
	level, err := ParseLevel(c.FileLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// IsDevelopment reports whether ENVIRONMENT is set to development.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// IsProduction reports whether ENVIRONMENT is set to production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

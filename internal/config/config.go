// Package config provides configuration loading from environment variables
// and command-line arguments.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInputDirRequired is returned when neither INPUT_DIR nor the first argument is set.
	ErrInputDirRequired = errors.New("config: INPUT_DIR is required")
	// ErrOutputDirRequired is returned when neither OUTPUT_DIR nor the second argument is set.
	ErrOutputDirRequired = errors.New("config: OUTPUT_DIR is required")
	// ErrTooManyArgs is returned when more than two positional arguments are given.
	ErrTooManyArgs = errors.New("config: expected at most two arguments: [INPUT_DIR [OUTPUT_DIR]]")
)

// Mirror modes control when output directories are created.
const (
	// MirrorEager mirrors every visited input directory.
	MirrorEager = "eager"
	// MirrorLazy mirrors only directories that receive a converted file.
	MirrorLazy = "lazy"
)

// Config holds all configuration for the application.
type Config struct {
	// Batch settings
	InputDir  string `env:"INPUT_DIR" json:"input_dir" validate:"required"`
	OutputDir string `env:"OUTPUT_DIR" json:"output_dir" validate:"required"`

	// Conversion settings
	SourceExt      string `env:"SOURCE_EXT, default=.wav" json:"source_ext" validate:"required,startswith=."`
	TargetFormat   string `env:"TARGET_FORMAT, default=ogg" json:"target_format" validate:"required,alphanum"`
	AudioCodec     string `env:"AUDIO_CODEC" json:"audio_codec,omitempty"`
	FFmpegPath     string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path" validate:"required"`
	MirrorMode     string `env:"MIRROR_MODE, default=eager" json:"mirror_mode" validate:"oneof=eager lazy"`
	ValidateSource bool   `env:"VALIDATE_SOURCE, default=true" json:"validate_source"`
	StrictExit     bool   `env:"STRICT_EXIT, default=true" json:"strict_exit"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Prefix           string `env:"S3_PREFIX" json:"s3_prefix,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format" validate:"oneof=text json"`
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"` // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
// Positional arguments take precedence over INPUT_DIR and OUTPUT_DIR.
// The returned config is normalized and validated.
func Load(args []string) (*Config, error) {
	if len(args) > 2 {
		return nil, ErrTooManyArgs
	}

	fromArgs := make(map[string]string, len(args))
	if len(args) > 0 {
		fromArgs["INPUT_DIR"] = args[0]
	}
	if len(args) > 1 {
		fromArgs["OUTPUT_DIR"] = args[1]
	}

	cfg := &Config{}
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.MultiLookuper(envconfig.MapLookuper(fromArgs), envconfig.OsLookuper()),
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// normalize lower-cases the enumerated settings and gives the source
// extension exactly one leading dot and the target format none.
func (c *Config) normalize() {
	c.SourceExt = strings.ToLower(strings.TrimSpace(c.SourceExt))
	if c.SourceExt != "" && !strings.HasPrefix(c.SourceExt, ".") {
		c.SourceExt = "." + c.SourceExt
	}
	c.TargetFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.TargetFormat), "."))
	c.MirrorMode = strings.ToLower(strings.TrimSpace(c.MirrorMode))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks that all required configuration is present and that
// enumerated settings hold one of their allowed values.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	// Map missing roots to domain errors; report the rest as-is.
	for _, fe := range verrs {
		if fe.Tag() != "required" {
			continue
		}
		switch fe.Field() {
		case "InputDir":
			return ErrInputDirRequired
		case "OutputDir":
			return ErrOutputDirRequired
		}
	}
	return fmt.Errorf("config: %w", err)
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for log shipping.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stdout)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{InputDir: %s, OutputDir: %s, SourceExt: %s, TargetFormat: %s, AudioCodec: %s, FFmpegPath: %s, MirrorMode: %s, ValidateSource: %t, StrictExit: %t, S3Bucket: %s, S3Region: %s, S3Prefix: %s, LogFormat: %s, LogLevel: %s}",
		c.InputDir,
		c.OutputDir,
		c.SourceExt,
		c.TargetFormat,
		c.AudioCodec,
		c.FFmpegPath,
		c.MirrorMode,
		c.ValidateSource,
		c.StrictExit,
		c.S3Bucket,
		c.S3Region,
		c.S3Prefix,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

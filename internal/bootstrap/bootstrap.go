// Package bootstrap provides dependency initialization for the wav2ogg CLI.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/maauso/wav2ogg/internal/audio"
	"github.com/maauso/wav2ogg/internal/batch"
	"github.com/maauso/wav2ogg/internal/config"
	"github.com/maauso/wav2ogg/internal/storage"
)

// Dependencies holds all initialized dependencies for a batch run.
type Dependencies struct {
	// Engine is exposed so the caller can run its preflight Check.
	Engine     *audio.FFmpegTranscoder
	Transcoder *batch.Transcoder
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize the ffmpeg engine
	engineOpts := []audio.Option{audio.WithFormat(cfg.TargetFormat)}
	if cfg.AudioCodec != "" {
		engineOpts = append(engineOpts, audio.WithCodec(cfg.AudioCodec))
	}
	engine := audio.NewFFmpegTranscoder(cfg.FFmpegPath, engineOpts...)

	opts := []batch.Option{
		batch.WithSourceExt(cfg.SourceExt),
		batch.WithTargetFormat(cfg.TargetFormat),
		batch.WithMirrorMode(batch.MirrorMode(cfg.MirrorMode)),
	}

	// Header inspection only understands RIFF/WAVE.
	if cfg.ValidateSource && cfg.SourceExt == ".wav" {
		opts = append(opts, batch.WithInspector(audio.NewWAVInspector()))
	}

	return &Dependencies{
		Engine:     engine,
		Transcoder: batch.NewTranscoder(engine, store, logger, opts...),
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.String("prefix", cfg.S3Prefix),
		)
		return s3Store, nil
	}

	logger.Info("local storage configured",
		slog.String("output_dir", cfg.OutputDir),
	)
	return storage.NewLocalStorage(), nil
}

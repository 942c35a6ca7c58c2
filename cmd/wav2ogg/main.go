// Package main provides the entry point for the wav2ogg batch converter.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maauso/wav2ogg/internal/bootstrap"
	"github.com/maauso/wav2ogg/internal/config"
)

// errPartialFailure signals that the run completed but some files failed.
var errPartialFailure = errors.New("one or more files failed to convert")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errPartialFailure):
		return 2
	default:
		return 1
	}
}

func run(args []string) error {
	// Load configuration from environment and arguments
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting wav2ogg",
		slog.String("input_dir", cfg.InputDir),
		slog.String("output_dir", cfg.OutputDir),
		slog.String("source_ext", cfg.SourceExt),
		slog.String("target_format", cfg.TargetFormat),
		slog.String("mirror_mode", cfg.MirrorMode),
		slog.String("log_format", cfg.LogFormat),
		slog.String("log_level", cfg.LogLevel),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
	)

	// Initialize dependencies using bootstrap
	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	// Stop between files on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := deps.Engine.Check(ctx); err != nil {
		return fmt.Errorf("preflight: %w", err)
	}

	summary, err := deps.Transcoder.Run(ctx, cfg.InputDir, cfg.OutputDir)
	if err != nil {
		return err
	}

	if summary.HasFailures() && cfg.StrictExit {
		return fmt.Errorf("%w: %d of %d", errPartialFailure, summary.Failed, summary.Discovered)
	}
	return nil
}

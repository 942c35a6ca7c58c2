package audio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// FFmpegTranscoder implements Transcoder using the ffmpeg CLI.
type FFmpegTranscoder struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	// format is the ffmpeg muxer name passed to -f.
	format string
	// codec is passed to -c:a when set; otherwise ffmpeg picks the muxer default.
	codec string
}

// Option configures an FFmpegTranscoder.
type Option func(*FFmpegTranscoder)

// WithFormat sets the output muxer. Defaults to "ogg".
func WithFormat(format string) Option {
	return func(t *FFmpegTranscoder) {
		if format != "" {
			t.format = format
		}
	}
}

// WithCodec sets the output audio codec.
func WithCodec(codec string) Option {
	return func(t *FFmpegTranscoder) {
		t.codec = codec
	}
}

// NewFFmpegTranscoder creates a new FFmpegTranscoder.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegTranscoder(ffmpegPath string, opts ...Option) *FFmpegTranscoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	t := &FFmpegTranscoder{
		ffmpegPath: ffmpegPath,
		format:     "ogg",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Format returns the output muxer name.
func (t *FFmpegTranscoder) Format() string {
	return t.format
}

// Transcode implements Transcoder.Transcode.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, src, dst string) error {
	return t.runFFmpeg(ctx, t.buildArgs(src, dst))
}

// buildArgs returns the ffmpeg arguments for a single conversion.
func (t *FFmpegTranscoder) buildArgs(src, dst string) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",           // Never wait on the terminal
		"-loglevel", "error", // Keep stderr to the failure reason
		"-y",                 // Overwrite output file without asking
		"-i", src,            // Input file
		"-vn",                // Drop any embedded cover art or video
	}
	if t.codec != "" {
		args = append(args, "-c:a", t.codec)
	}
	args = append(args, "-f", t.format, dst)
	return args
}

// Check verifies that the ffmpeg binary can be found and that it can mux
// the configured output format.
func (t *FFmpegTranscoder) Check(ctx context.Context) error {
	if _, err := exec.LookPath(t.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, t.ffmpegPath)
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, t.ffmpegPath, "-hide_banner", "-muxers")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("list ffmpeg muxers: %w, stderr: %s", err, stderr.String())
	}

	if !hasMuxer(string(out), t.format) {
		return fmt.Errorf("%w: %s", ErrFormatUnsupported, t.format)
	}
	return nil
}

// hasMuxer reports whether the output of `ffmpeg -muxers` lists format.
// Entries look like " E  ogg             Ogg" after a "--" separator line.
func hasMuxer(listing, format string) bool {
	scanner := bufio.NewScanner(strings.NewReader(listing))
	inList := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "--" {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.Contains(fields[0], "E") {
			continue
		}
		for _, name := range strings.Split(fields[1], ",") {
			if name == format {
				return true
			}
		}
	}
	return false
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (t *FFmpegTranscoder) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("ffmpeg error: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg error: %v, stderr: %s", e.Err, stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// Kind classifies the failure from the process error and captured stderr.
// Anything other than a non-zero exit means ffmpeg never ran.
func (e *FFmpegError) Kind() FailureKind {
	var exitErr *exec.ExitError
	if !errors.As(e.Err, &exitErr) {
		return FailureEngine
	}
	return classifyStderr(e.Stderr)
}

// Verify interface implementation at compile time.
var _ Transcoder = (*FFmpegTranscoder)(nil)

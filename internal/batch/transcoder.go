// Package batch mirrors an input directory tree into an output tree,
// converting every file with the source extension along the way.
//
// Conversion is sequential: one file is discovered, transcoded, published
// and reported before the next is considered. A failing file is recorded
// and the run moves on; only environment-level problems stop a run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maauso/wav2ogg/internal/audio"
	"github.com/maauso/wav2ogg/internal/batch/id"
	"github.com/maauso/wav2ogg/internal/storage"
)

// Static errors for batch runs.
var (
	// ErrInputUnreadable is returned when the input root cannot be walked.
	ErrInputUnreadable = errors.New("batch: input root is not a readable directory")
	// ErrDirectoryCreation is returned when an output directory cannot be created.
	ErrDirectoryCreation = errors.New("batch: cannot create output directory")
	// ErrOutsideInputRoot is returned when a source path does not live under the input root.
	ErrOutsideInputRoot = errors.New("batch: source is outside the input root")
	// ErrPublish wraps storage failures recorded in a Result.
	ErrPublish = errors.New("batch: publish failed")
)

// MirrorMode controls when output directories are created.
type MirrorMode string

const (
	// MirrorEager creates a mirror of every visited input directory.
	MirrorEager MirrorMode = "eager"
	// MirrorLazy creates only directories that receive a converted file.
	MirrorLazy MirrorMode = "lazy"
)

// Transcoder converts every matching file under an input root into the
// target format under an output root.
type Transcoder struct {
	engine    audio.Transcoder
	inspector audio.Inspector
	store     storage.Storage
	logger    *slog.Logger
	sourceExt string
	targetExt string
	mirror    MirrorMode
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithSourceExt sets the source extension, including its leading dot.
// Matching ignores case. Defaults to ".wav".
func WithSourceExt(ext string) Option {
	return func(t *Transcoder) {
		if ext != "" {
			t.sourceExt = ext
		}
	}
}

// WithTargetFormat sets the extension, without a dot, given to converted
// files. Defaults to "ogg".
func WithTargetFormat(format string) Option {
	return func(t *Transcoder) {
		if format != "" {
			t.targetExt = format
		}
	}
}

// WithMirrorMode sets the directory mirroring mode. Defaults to MirrorEager.
func WithMirrorMode(mode MirrorMode) Option {
	return func(t *Transcoder) {
		if mode == MirrorEager || mode == MirrorLazy {
			t.mirror = mode
		}
	}
}

// WithInspector enables header inspection of each source before it is
// handed to the engine. A header the inspector does not recognize is logged
// and the engine still gets the file; only a source that cannot be opened
// fails here.
func WithInspector(inspector audio.Inspector) Option {
	return func(t *Transcoder) {
		t.inspector = inspector
	}
}

// NewTranscoder creates a new Transcoder. A nil store publishes to the
// local output tree only; a nil logger uses slog.Default().
func NewTranscoder(engine audio.Transcoder, store storage.Storage, logger *slog.Logger, opts ...Option) *Transcoder {
	if store == nil {
		store = storage.NewLocalStorage()
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &Transcoder{
		engine:    engine,
		store:     store,
		logger:    logger,
		sourceExt: ".wav",
		targetExt: "ogg",
		mirror:    MirrorEager,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// EnsureDirectory creates path and any missing parents. An existing
// directory is not an error; an existing non-directory is.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrDirectoryCreation, err)
	}
	return nil
}

// TargetPath returns the mirrored destination of sourcePath: its path
// relative to inputRoot, joined onto outputRoot, with the extension replaced
// by the target format. A name that is only an extension keeps it (".wav"
// becomes ".wav.ogg").
func (t *Transcoder) TargetPath(inputRoot, outputRoot, sourcePath string) (string, error) {
	rel, err := filepath.Rel(inputRoot, sourcePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrOutsideInputRoot, sourcePath, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideInputRoot, sourcePath)
	}

	dir, name := filepath.Split(rel)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = name
	}
	return filepath.Join(outputRoot, dir, stem+"."+t.targetExt), nil
}

// TranscodeOne converts sourcePath into destinationPath, overwriting any
// existing file. It never returns an error: failures are reported in the
// Result and logged.
func (t *Transcoder) TranscodeOne(ctx context.Context, sourcePath, destinationPath string) Result {
	return t.transcodeOne(ctx, t.logger, sourcePath, destinationPath)
}

func (t *Transcoder) transcodeOne(ctx context.Context, logger *slog.Logger, src, dst string) Result {
	start := time.Now()
	res := Result{Source: src, Destination: dst}

	if t.inspector != nil {
		info, err := t.inspector.Inspect(src)
		switch {
		case errors.Is(err, audio.ErrInvalidWAV):
			// RF64 and other variants the header parser rejects may still decode.
			logger.Warn("source header not recognized, passing to engine",
				slog.String("source", src),
				slog.String("error", err.Error()),
			)
		case err != nil:
			res = res.fail(err, time.Since(start))
			logFailure(logger, "conversion failed", res)
			return res
		default:
			logger.Debug("source inspected",
				slog.String("source", src),
				slog.Int("sample_rate", info.SampleRate),
				slog.Int("channels", info.Channels),
				slog.Int("bit_depth", info.BitDepth),
				slog.Duration("duration", info.Duration),
			)
		}
	}

	if err := t.engine.Transcode(ctx, src, dst); err != nil {
		res = res.fail(err, time.Since(start))
		logFailure(logger, "conversion failed", res)
		return res
	}

	res.Status = StatusConverted
	res.Location = dst
	res.Elapsed = time.Since(start)
	return res
}

// Run mirrors inputRoot into outputRoot, converting every matching file.
// Per-file failures are recorded in the Summary; the returned error is
// non-nil only when the run itself could not continue.
func (t *Transcoder) Run(ctx context.Context, inputRoot, outputRoot string) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: id.Generate()}
	logger := t.logger.With(slog.String("run_id", summary.RunID))

	in, err := resolveInputRoot(inputRoot)
	if err != nil {
		return summary, err
	}
	out, err := filepath.Abs(outputRoot)
	if err != nil {
		return summary, fmt.Errorf("resolve output root: %w", err)
	}
	if err := EnsureDirectory(out); err != nil {
		return summary, err
	}
	if resolved, err := filepath.EvalSymlinks(out); err == nil {
		out = resolved
	}

	logger.Info("starting batch",
		slog.String("input_root", in),
		slog.String("output_root", out),
		slog.String("source_ext", t.sourceExt),
		slog.String("target_format", t.targetExt),
		slog.String("mirror_mode", string(t.mirror)),
	)

	// The output root is pruned from the walk so that an output tree inside
	// the input tree is never mirrored into itself.
	for entry, err := range t.Discover(in, out) {
		if err != nil {
			if errors.Is(err, ErrInputUnreadable) {
				return summary, err
			}
			summary.SkippedDirs++
			logger.Warn("skipping unreadable directory",
				slog.String("dir", entry.Dir),
				slog.String("error", err.Error()),
			)
			continue
		}

		if ctx.Err() != nil {
			break
		}

		if entry.IsDir() {
			summary.Directories++
			if t.mirror == MirrorEager {
				if err := EnsureDirectory(mirrorDir(in, out, entry.Dir)); err != nil {
					return summary, err
				}
			}
			continue
		}

		summary.Discovered++
		src := entry.Path()
		dst, err := t.TargetPath(in, out, src)
		if err != nil {
			return summary, err
		}
		if err := EnsureDirectory(filepath.Dir(dst)); err != nil {
			return summary, err
		}

		res := t.transcodeOne(ctx, logger, src, dst)
		if res.OK() {
			res = t.publish(ctx, logger, out, res)
		}
		if res.OK() {
			logger.Info("converted",
				slog.String("source", res.Source),
				slog.String("destination", res.Destination),
				slog.String("location", res.Location),
				slog.Duration("elapsed", res.Elapsed),
			)
		}
		summary.record(res)
	}

	summary.Elapsed = time.Since(start)
	if err := ctx.Err(); err != nil {
		logger.Warn("batch interrupted",
			slog.Int("converted", summary.Converted),
			slog.Int("failed", summary.Failed),
		)
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}

	logger.Info("batch finished",
		slog.Int("directories", summary.Directories),
		slog.Int("discovered", summary.Discovered),
		slog.Int("converted", summary.Converted),
		slog.Int("failed", summary.Failed),
		slog.Int("skipped_dirs", summary.SkippedDirs),
		slog.Any("failures_by_cause", summary.FailuresByCause()),
		slog.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// publish hands a converted file to the storage port, turning the result
// into a failure if that does not succeed.
func (t *Transcoder) publish(ctx context.Context, logger *slog.Logger, outputRoot string, res Result) Result {
	start := time.Now()
	rel, err := filepath.Rel(outputRoot, res.Destination)
	if err != nil {
		rel = filepath.Base(res.Destination)
	}

	location, err := t.store.Publish(ctx, filepath.ToSlash(rel), res.Destination)
	if err != nil {
		res = res.fail(fmt.Errorf("%w: %w", ErrPublish, err), res.Elapsed+time.Since(start))
		logFailure(logger, "publish failed", res)
		return res
	}

	res.Location = location
	res.Elapsed += time.Since(start)
	return res
}

// resolveInputRoot returns the absolute, symlink-free form of root and
// checks that it is a directory.
func resolveInputRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputUnreadable, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInputUnreadable, root)
	}
	return resolved, nil
}

// mirrorDir maps a directory under inputRoot to its counterpart under outputRoot.
func mirrorDir(inputRoot, outputRoot, dir string) string {
	rel, err := filepath.Rel(inputRoot, dir)
	if err != nil {
		return outputRoot
	}
	return filepath.Join(outputRoot, rel)
}

func logFailure(logger *slog.Logger, msg string, res Result) {
	logger.Error(msg,
		slog.String("source", res.Source),
		slog.String("destination", res.Destination),
		slog.String("cause", string(res.Cause)),
		slog.String("error", res.Err.Error()),
	)
}

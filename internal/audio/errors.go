package audio

import (
	"errors"
	"regexp"
)

// Static errors for audio operations.
var (
	// ErrFFmpegNotFound is returned by Check when the ffmpeg binary cannot be located.
	ErrFFmpegNotFound = errors.New("ffmpeg not found on PATH")
	// ErrFormatUnsupported is returned by Check when ffmpeg has no muxer for the target format.
	ErrFormatUnsupported = errors.New("ffmpeg has no muxer for target format")
	// ErrInvalidWAV is returned when a source file is not a readable RIFF/WAVE file.
	ErrInvalidWAV = errors.New("not a valid WAV file")
)

// FailureKind classifies why a single ffmpeg invocation failed.
type FailureKind string

const (
	// FailureCodec covers decode or encode failures not otherwise recognized.
	FailureCodec FailureKind = "codec"
	// FailureUnsupported indicates data ffmpeg cannot read or a format it cannot write.
	FailureUnsupported FailureKind = "unsupported"
	// FailureIO indicates a filesystem problem reading the source or writing the destination.
	FailureIO FailureKind = "io"
	// FailureEngine indicates the ffmpeg process could not be started at all.
	FailureEngine FailureKind = "engine"
)

// Pre-compiled regexes for classifying ffmpeg stderr output. I/O patterns are
// checked first: "Permission denied" on the output is not a codec problem even
// when ffmpeg also reports a failed encoder initialization.
var (
	reIOFailure = regexp.MustCompile(
		`(?i)Permission denied|No space left on device|Read-only file system|` +
			`Input/output error|No such file or directory|Is a directory|Disk quota exceeded`)

	reUnsupported = regexp.MustCompile(
		`(?i)Invalid data found when processing input|` +
			`Unknown encoder|Unknown decoder|` +
			`Unable to find a suitable output format|` +
			`Requested output format .* is not a suitable output format|` +
			`Could not find codec parameters|` +
			`not supported|unsupported codec|` +
			`does not contain any stream`)
)

// MatchIOFailure reports whether stderr contains a filesystem error.
func MatchIOFailure(stderr string) bool {
	return reIOFailure.MatchString(stderr)
}

// MatchUnsupported reports whether stderr contains an unreadable-input or
// unknown-format error.
func MatchUnsupported(stderr string) bool {
	return reUnsupported.MatchString(stderr)
}

// classifyStderr maps captured ffmpeg stderr to a FailureKind.
func classifyStderr(stderr string) FailureKind {
	switch {
	case MatchIOFailure(stderr):
		return FailureIO
	case MatchUnsupported(stderr):
		return FailureUnsupported
	default:
		return FailureCodec
	}
}

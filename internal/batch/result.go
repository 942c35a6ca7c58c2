package batch

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/maauso/wav2ogg/internal/audio"
)

// Status is the outcome of a single file conversion.
type Status string

const (
	// StatusConverted indicates the destination was written (and published).
	StatusConverted Status = "CONVERTED"
	// StatusFailed indicates the file was skipped after an error.
	StatusFailed Status = "FAILED"
)

// Cause enumerates why a conversion failed.
type Cause string

const (
	// CauseNone is the cause of a successful conversion.
	CauseNone Cause = ""
	// CauseIO covers filesystem errors on the source or destination.
	CauseIO Cause = "io"
	// CauseUnsupported covers sources that are not valid or not decodable.
	CauseUnsupported Cause = "unsupported"
	// CauseCodec covers engine failures not otherwise recognized.
	CauseCodec Cause = "codec"
	// CauseEngine indicates the engine process could not be started.
	CauseEngine Cause = "engine"
	// CausePublish indicates the converted file could not be published.
	CausePublish Cause = "publish"
	// CauseCancelled indicates the run was interrupted during the conversion.
	CauseCancelled Cause = "cancelled"
	// CauseUnknown is used for errors that match no other cause.
	CauseUnknown Cause = "unknown"
)

// Result is the outcome of converting one source file.
type Result struct {
	// Source is the path of the input file.
	Source string
	// Destination is the path of the converted file in the output tree.
	Destination string
	// Location is where the converted file was published.
	Location string
	// Status is CONVERTED or FAILED.
	Status Status
	// Cause classifies Err; CauseNone on success.
	Cause Cause
	// Err is the failure, nil on success.
	Err error
	// Elapsed is the wall time spent on the file.
	Elapsed time.Duration
}

// OK reports whether the conversion succeeded.
func (r Result) OK() bool {
	return r.Status == StatusConverted
}

func (r Result) fail(err error, elapsed time.Duration) Result {
	r.Status = StatusFailed
	r.Err = err
	r.Cause = Classify(err)
	r.Elapsed = elapsed
	return r
}

// Classify maps an error from inspection, transcoding or publishing to a Cause.
func Classify(err error) Cause {
	if err == nil {
		return CauseNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CauseCancelled
	}
	if errors.Is(err, ErrPublish) {
		return CausePublish
	}
	if errors.Is(err, audio.ErrInvalidWAV) {
		return CauseUnsupported
	}

	var ffErr *audio.FFmpegError
	if errors.As(err, &ffErr) {
		switch ffErr.Kind() {
		case audio.FailureIO:
			return CauseIO
		case audio.FailureUnsupported:
			return CauseUnsupported
		case audio.FailureEngine:
			return CauseEngine
		default:
			return CauseCodec
		}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return CauseIO
	}
	return CauseUnknown
}

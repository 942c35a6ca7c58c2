// Package audio provides interfaces and implementations for audio transcoding
// and source inspection.
package audio

import (
	"context"
	"time"
)

// Transcoder defines the interface for the external engine that decodes a
// source file and encodes it into the target container.
type Transcoder interface {
	// Transcode decodes src and writes the encoded result to dst,
	// overwriting any existing file at dst. The directory containing dst
	// must already exist.
	Transcode(ctx context.Context, src, dst string) error
}

// Info describes the stream parameters read from a source header.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Inspector defines the interface for checking that a source file is a
// well-formed instance of the expected container before it is handed to
// the engine.
type Inspector interface {
	// Inspect reads the header of the file at path.
	// Returns an error wrapping ErrInvalidWAV if the file is not a valid
	// container, or the underlying I/O error if it cannot be read.
	Inspect(path string) (Info, error)
}

package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// WAVInspector implements Inspector by parsing RIFF/WAVE headers.
type WAVInspector struct{}

// NewWAVInspector creates a new WAVInspector.
func NewWAVInspector() *WAVInspector {
	return &WAVInspector{}
}

// Inspect implements Inspector.Inspect. Only the headers are read; sample
// data is left to the engine.
func (i *WAVInspector) Inspect(path string) (Info, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from the directory walk
	if err != nil {
		return Info{}, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		if d.Err() != nil {
			return Info{}, fmt.Errorf("%w: %s: %v", ErrInvalidWAV, path, d.Err())
		}
		return Info{}, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	duration, err := d.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrInvalidWAV, path, err)
	}

	return Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Duration:   duration,
	}, nil
}

// Verify interface implementation at compile time.
var _ Inspector = (*WAVInspector)(nil)

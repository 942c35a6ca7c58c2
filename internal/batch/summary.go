package batch

import "time"

// Summary tracks aggregate counters across a batch run.
type Summary struct {
	RunID string
	// Directories counts visited input directories, the root included.
	Directories int
	// Discovered counts files matching the source extension.
	Discovered int
	Converted  int
	Failed     int
	// SkippedDirs counts subdirectories that could not be read.
	SkippedDirs int
	Failures    []Result
	Elapsed     time.Duration
}

// HasFailures reports whether any file failed to convert.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

// FailuresByCause counts failed files per cause.
func (s *Summary) FailuresByCause() map[Cause]int {
	counts := make(map[Cause]int, len(s.Failures))
	for _, r := range s.Failures {
		counts[r.Cause]++
	}
	return counts
}

func (s *Summary) record(r Result) {
	if r.OK() {
		s.Converted++
		return
	}
	s.Failed++
	s.Failures = append(s.Failures, r)
}

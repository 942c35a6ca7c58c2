// Package id names batch runs.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// stampLayout sorts lexically in start order and is safe in file names.
const stampLayout = "20060102T150405Z"

// Generate returns a run ID of the form run-<UTC start>-<8 hex>, for
// example run-20261019T051600Z-a1b2c3d4.
func Generate() string {
	return generate(time.Now())
}

func generate(now time.Time) string {
	stamp := "run-" + now.UTC().Format(stampLayout)
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return stamp
	}
	return stamp + "-" + hex.EncodeToString(suffix[:])
}

package batch

import (
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// Entry is one item produced by Discover: either a visited directory
// (Name is empty) or a matching file inside Dir.
type Entry struct {
	Dir  string
	Name string
}

// IsDir reports whether the entry is a directory visit.
func (e Entry) IsDir() bool {
	return e.Name == ""
}

// Path returns the full path of the entry.
func (e Entry) Path() string {
	return filepath.Join(e.Dir, e.Name)
}

// Discover walks inputRoot depth-first in pre-order and yields every visited
// directory and every file whose extension matches the source extension,
// ignoring case. Other files are skipped silently. Directories listed in
// exclude are pruned, except inputRoot itself.
//
// An unreadable inputRoot yields a single error wrapping ErrInputUnreadable.
// An unreadable subdirectory yields a non-fatal error and the walk continues.
func (t *Transcoder) Discover(inputRoot string, exclude ...string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		root := filepath.Clean(inputRoot)
		pruned := make(map[string]bool, len(exclude))
		for _, e := range exclude {
			if c := filepath.Clean(e); c != root {
				pruned[c] = true
			}
		}

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					yield(Entry{Dir: root}, fmt.Errorf("%w: %w", ErrInputUnreadable, err))
					return filepath.SkipAll
				}
				if !yield(Entry{Dir: path}, fmt.Errorf("read %s: %w", path, err)) {
					return filepath.SkipAll
				}
				return nil
			}

			if d.IsDir() {
				if pruned[path] {
					return filepath.SkipDir
				}
				if !yield(Entry{Dir: path}, nil) {
					return filepath.SkipAll
				}
				return nil
			}

			if !t.matches(d.Name()) {
				return nil
			}
			if !yield(Entry{Dir: filepath.Dir(path), Name: d.Name()}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// matches reports whether name carries the source extension.
func (t *Transcoder) matches(name string) bool {
	return strings.EqualFold(filepath.Ext(name), t.sourceExt)
}

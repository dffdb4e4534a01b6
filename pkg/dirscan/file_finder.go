package dirscan

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Logger receives the finder's diagnostics.
type Logger interface {
	Verbosef(format string, args ...any)
	Errorf(format string, args ...any)
}

// Progress is the live counter of files queued for formatting.
type Progress interface {
	Store(int64)
}

// Canceller tells the finder to stop early.
type Canceller interface {
	Cancelled() bool
}

// FileSet is the outcome of one discovery run. Both slices hold absolute paths
// in traversal order and belong to the caller.
type FileSet struct {
	ToFormat []string
	Ignored  []string
}

type FileFinder struct {
	// Root must be an existing, absolute directory.
	Root       string
	Extensions []string
	Rules      []Rule
	Log        Logger
	Progress   Progress
	Cancel     Canceller
}

// Find walks Root and partitions qualifying regular files into those to format and those ignored.
// When cancelled it returns what was collected so far.
func (ff *FileFinder) Find() FileSet {
	extensions := ff.Extensions
	if len(extensions) == 0 {
		extensions = CxxExtensions
	}

	set := FileSet{
		ToFormat: make([]string, 0, 4096),
		Ignored:  make([]string, 0),
	}

	filepath.WalkDir(ff.Root, func(path string, d fs.DirEntry, err error) error {
		if ff.Cancel != nil && ff.Cancel.Cancelled() {
			return filepath.SkipAll
		}

		if err != nil {
			ff.errorf("Unable to read %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !hasExtension(d.Name(), extensions) {
			return nil
		}

		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}

		if IsIgnored(path, ff.Rules) {
			ff.verbosef("Ignoring file: %s", filepath.ToSlash(path))
			set.Ignored = append(set.Ignored, path)
			return nil
		}

		set.ToFormat = append(set.ToFormat, path)
		if ff.Progress != nil {
			ff.Progress.Store(int64(len(set.ToFormat)))
		}
		return nil
	})

	return set
}

func (ff *FileFinder) verbosef(format string, args ...any) {
	if ff.Log != nil {
		ff.Log.Verbosef(format, args...)
	}
}

func (ff *FileFinder) errorf(format string, args ...any) {
	if ff.Log != nil {
		ff.Log.Errorf(format, args...)
	}
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

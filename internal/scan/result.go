package scan

import (
	"encoding/json"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"github.com/idelchi/di/internal/topn"
)

const (
	// DefaultTopN is the default length of the largest files and directories lists.
	DefaultTopN = 5
	// DefaultProgressInterval is the minimum time between two progress callbacks.
	DefaultProgressInterval = 250 * time.Millisecond
)

// Kind classifies a visited filesystem entry.
type Kind uint8

const (
	// File is a regular file.
	File Kind = iota
	// Directory is a directory.
	Directory
	// Symlink is a symbolic link or any other non-regular, non-directory entry.
	Symlink
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "dir"
	default:
		return "symlink"
	}
}

// kindOf maps a file mode onto a Kind.
func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return File
	case mode.IsDir():
		return Directory
	default:
		return Symlink
	}
}

// Options configures a scan.
type Options struct {
	// Path is the root to scan. Defaults to the current directory.
	Path string
	// Workers is the number of traversal workers (0 = number of CPUs).
	Workers int
	// TopN is the length of the largest files and directories lists.
	// Zero disables both lists.
	TopN int
	// ProgressInterval throttles the progress callback.
	ProgressInterval time.Duration
	// Logger receives diagnostics. Nil discards them.
	Logger *zerolog.Logger
}

// Result holds the statistics of a completed scan.
type Result struct {
	// Root is the canonical path that was scanned.
	Root string
	// Files is the number of regular files.
	Files uint64
	// Directories is the number of directories, the root included.
	Directories uint64
	// Symlinks is the number of symlinks and other special entries.
	Symlinks uint64
	// Bytes is the apparent size of all files.
	Bytes uint64
	// Skipped is the number of entries that could not be read.
	Skipped uint64
	// Elapsed is the wall time of the scan.
	Elapsed time.Duration
	// Workers is the number of traversal workers used.
	Workers int
	// TopN is the capacity of both largest lists.
	TopN int
	// LargestFiles holds the largest files by size.
	LargestFiles *topn.Selector
	// LargestDirs holds the directories with the largest sum of direct child files.
	LargestDirs *topn.Selector
}

// Entries returns the number of entries counted.
func (r *Result) Entries() uint64 {
	return r.Files + r.Directories + r.Symlinks
}

// MarshalJSON encodes the result with both lists in descending size order.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Root         string        `json:"root"`
		Files        uint64        `json:"files"`
		Directories  uint64        `json:"directories"`
		Symlinks     uint64        `json:"symlinks"`
		Bytes        uint64        `json:"bytes"`
		Skipped      uint64        `json:"skipped"`
		Elapsed      time.Duration `json:"elapsed"`
		Workers      int           `json:"workers"`
		TopN         int           `json:"top_n"`
		LargestDirs  []topn.Record `json:"largest_dirs"`
		LargestFiles []topn.Record `json:"largest_files"`
	}{
		Root:         r.Root,
		Files:        r.Files,
		Directories:  r.Directories,
		Symlinks:     r.Symlinks,
		Bytes:        r.Bytes,
		Skipped:      r.Skipped,
		Elapsed:      r.Elapsed,
		Workers:      r.Workers,
		TopN:         r.TopN,
		LargestDirs:  r.LargestDirs.Records(),
		LargestFiles: r.LargestFiles.Records(),
	})
}

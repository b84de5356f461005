package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// channelDepth is the number of buffered observations per worker.
const channelDepth = 64

// resolveRoot canonicalizes path and returns it with its metadata.
func resolveRoot(path string) (string, fs.FileInfo, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", nil, fmt.Errorf("resolving root %q: %w", path, err)
	}

	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", nil, fmt.Errorf("resolving root %q: %w", path, err)
	}

	info, err := os.Lstat(root)
	if err != nil {
		return "", nil, fmt.Errorf("accessing root %q: %w", root, err)
	}

	return root, info, nil
}

// newObservation builds the observation for an entry with readable metadata.
func newObservation(path string, info fs.FileInfo) observation {
	o := observation{path: path, kind: kindOf(info.Mode())}
	if o.kind == File {
		o.size = uint64(info.Size()) //nolint:gosec // Regular file sizes are never negative
	}

	return o
}

// walk sends an observation for every entry below root to out.
// The root itself is not sent.
//
//nolint:varnamelen // d is standard for DirEntry
func walk(ctx context.Context, root string, workers int, out chan<- observation) error {
	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: workers,
	}

	return fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			out <- observation{path: path, err: err}

			return nil // Skip unreadable subtrees
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == root {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			out <- observation{path: path, err: err}

			return nil //nolint:nilerr // Intentionally skip entries without metadata
		}

		out <- newObservation(path, info)

		return nil
	})
}

// Run scans the tree at opt.Path and returns its statistics.
//
// Every entry below the root, hidden ones included, is visited by
// opt.Workers concurrent walkers. Entries that cannot be read are skipped and
// counted in Result.Skipped. Only a root that cannot be resolved, or a
// cancelled ctx, makes Run fail.
//
// progressHook, if not nil, is called with the number of entries counted so
// far at most once per opt.ProgressInterval. It is called from a single
// goroutine.
func Run(ctx context.Context, opt Options, progressHook func(entries uint64)) (*Result, error) {
	log := zerolog.Nop()
	if opt.Logger != nil {
		log = *opt.Logger
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}

	root, info, err := resolveRoot(opt.Path)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("root", root).
		Int("workers", opt.Workers).
		Int("top", opt.TopN).
		Msg("scanning directory")

	agg := newAggregator(root, opt.TopN, log)
	agg.progress = progressHook

	if opt.ProgressInterval > 0 {
		agg.interval = opt.ProgressInterval
	}

	observations := make(chan observation, opt.Workers*channelDepth)

	var (
		wg     conc.WaitGroup
		result *Result
	)

	wg.Go(func() {
		result = agg.consume(observations)
	})

	start := time.Now()

	observations <- newObservation(root, info)

	var walkErr error
	if info.IsDir() {
		walkErr = walk(ctx, root, opt.Workers, observations)
	}

	// All walkers have returned once fastwalk.Walk does, so no sender is left.
	close(observations)
	wg.Wait()

	if walkErr != nil {
		return nil, fmt.Errorf("walking %q: %w", root, walkErr)
	}

	result.Elapsed = time.Since(start)
	result.Workers = opt.Workers

	log.Debug().
		Uint64("entries", result.Entries()).
		Dur("elapsed", result.Elapsed).
		Msg("scan finished")

	return result, nil
}

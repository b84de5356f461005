package scan

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/idelchi/di/internal/topn"
)

// observation is one visited entry, sent from a walker to the aggregator.
// A non-nil err marks an entry that could not be read.
type observation struct {
	path string
	kind Kind
	size uint64
	err  error
}

// dirSizes accumulates the size of the direct child files of each directory.
type dirSizes map[string]uint64

// add adds bytes to the total of dir.
func (d dirSizes) add(dir string, bytes uint64) {
	d[dir] += bytes
}

// foldInto pushes every directory total into sel.
func (d dirSizes) foldInto(sel *topn.Selector) {
	for dir, bytes := range d {
		sel.Push(bytes, dir)
	}
}

// parentOf returns the directory containing path, or false for a path
// without one (a filesystem root).
func parentOf(path string) (string, bool) {
	parent := filepath.Dir(path)
	if parent == path {
		return "", false
	}

	return parent, true
}

// aggregator folds observations into a Result.
// It must only ever be driven from a single goroutine.
type aggregator struct {
	result *Result
	dirs   dirSizes
	log    zerolog.Logger

	progress func(entries uint64)
	interval time.Duration
	now      func() time.Time
	last     time.Time
}

// newAggregator creates an aggregator with zeroed counters.
func newAggregator(root string, topN int, log zerolog.Logger) *aggregator {
	agg := &aggregator{
		result: &Result{
			Root:         root,
			TopN:         max(topN, 0),
			LargestFiles: topn.New(topN),
			LargestDirs:  topn.New(topN),
		},
		dirs:     make(dirSizes),
		log:      log,
		interval: DefaultProgressInterval,
		now:      time.Now,
	}
	agg.last = agg.now()

	return agg
}

// observe records a single entry.
func (a *aggregator) observe(o observation) {
	if o.err != nil {
		a.result.Skipped++
		a.log.Trace().Str("path", o.path).Err(o.err).Msg("skipping entry")

		return
	}

	switch o.kind {
	case File:
		a.result.Files++
		a.result.Bytes += o.size
		a.result.LargestFiles.Push(o.size, o.path)

		if parent, ok := parentOf(o.path); ok {
			a.dirs.add(parent, o.size)
		}
	case Directory:
		a.result.Directories++
	default:
		a.result.Symlinks++
	}

	a.report()
}

// report calls the progress hook at most once per interval.
func (a *aggregator) report() {
	if a.progress == nil {
		return
	}

	now := a.now()
	if now.Sub(a.last) < a.interval {
		return
	}

	a.last = now
	a.progress(a.result.Entries())
}

// consume drains observations until the channel is closed and returns the
// finished result.
func (a *aggregator) consume(observations <-chan observation) *Result {
	for o := range observations {
		a.observe(o)
	}

	return a.finish()
}

// finish folds the directory totals into the directory list and returns the
// result. The aggregator must not be used afterwards.
func (a *aggregator) finish() *Result {
	a.dirs.foldInto(a.result.LargestDirs)
	a.log.Debug().
		Int("directories", len(a.dirs)).
		Uint64("skipped", a.result.Skipped).
		Msg("folded directory totals")
	a.dirs = nil

	return a.result
}

// Package scan computes disk usage statistics for a directory tree.
//
// It walks the tree using fastwalk for parallel traversal and funnels every
// visited entry through a single channel to one aggregator goroutine, which
// owns the counters, the per-directory totals and the largest file and
// directory lists. No scan state is shared between goroutines.
package scan

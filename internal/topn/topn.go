// Package topn provides a fixed-capacity selector that keeps the N heaviest
// records out of an arbitrarily long stream of pushes.
package topn

import (
	"cmp"
	"iter"
	"slices"

	"github.com/emirpasic/gods/trees/binaryheap"
)

// Record is a weighted label held by a Selector.
type Record struct {
	// Weight is the size in bytes.
	Weight uint64 `json:"size"`
	// Label is the file or directory path.
	Label string `json:"path"`
}

// byWeight orders records lightest first, so the heap root is always the
// record to evict.
func byWeight(a, b any) int {
	ra, rb := a.(Record), b.(Record) //nolint:forcetypeassert // heap only ever holds Records

	if c := cmp.Compare(ra.Weight, rb.Weight); c != 0 {
		return c
	}

	return cmp.Compare(ra.Label, rb.Label)
}

// Selector retains the capacity largest records pushed into it.
// It is not safe for concurrent use.
type Selector struct {
	capacity int
	heap     *binaryheap.Heap
}

// New creates an empty selector. A capacity of zero (or less) is valid and
// makes every push a no-op.
func New(capacity int) *Selector {
	return &Selector{
		capacity: max(capacity, 0),
		heap:     binaryheap.NewWith(byWeight),
	}
}

// Cap returns the maximum number of records held.
func (s *Selector) Cap() int {
	return s.capacity
}

// Len returns the number of records currently held.
func (s *Selector) Len() int {
	return s.heap.Size()
}

// Min returns the lightest held record.
func (s *Selector) Min() (Record, bool) {
	v, ok := s.heap.Peek()
	if !ok {
		return Record{}, false
	}

	return v.(Record), true //nolint:forcetypeassert // heap only ever holds Records
}

// Push offers a record to the selector.
//
// Below capacity the record is always kept. At capacity it replaces the
// current minimum only when its weight is strictly greater; a record whose
// weight equals the minimum is dropped, so ties never displace a holder.
func (s *Selector) Push(weight uint64, label string) {
	if s.capacity == 0 {
		return
	}

	if s.heap.Size() < s.capacity {
		s.heap.Push(Record{Weight: weight, Label: label})

		return
	}

	lightest, _ := s.Min()
	if weight <= lightest.Weight {
		return
	}

	s.heap.Pop()
	s.heap.Push(Record{Weight: weight, Label: label})
}

// Records returns a copy of the held records, heaviest first.
// The selector is left untouched.
func (s *Selector) Records() []Record {
	records := make([]Record, 0, s.heap.Size())
	for _, v := range s.heap.Values() {
		records = append(records, v.(Record)) //nolint:forcetypeassert // heap only ever holds Records
	}

	slices.SortFunc(records, func(a, b Record) int {
		return byWeight(b, a)
	})

	return records
}

// Drain empties the selector and yields its records heaviest first.
// The sequence can be consumed once; later drains yield nothing.
func (s *Selector) Drain() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		// The heap pops lightest first, so unload it before yielding.
		ascending := make([]Record, 0, s.heap.Size())
		for {
			v, ok := s.heap.Pop()
			if !ok {
				break
			}

			ascending = append(ascending, v.(Record)) //nolint:forcetypeassert // heap only ever holds Records
		}

		for i := len(ascending) - 1; i >= 0; i-- {
			if !yield(ascending[i]) {
				return
			}
		}
	}
}

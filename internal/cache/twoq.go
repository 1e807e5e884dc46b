package cache

import "github.com/go1cd/onecd/internal/logging"

// TwoQ composes an admission FIFO ("in"), a ghost FIFO ("out") that
// remembers keys recently evicted from "in", and an LRU main store. It
// approximates LRU-K at near-FIFO cost: one-shot scans flow through "in"
// without polluting "main", while a second touch within the ghost window
// promotes a key straight into "main".
//
// See http://www.vldb.org/conf/1994/P439.PDF.
type TwoQ[K comparable, V any] struct {
	in   *FIFO[K, V]
	out  *FIFO[K, struct{}]
	main *LRU[K, V]
}

// NewTwoQ creates a 2Q cache of total capacity size, split in = size/4,
// out = size/2, main = size - size/4, each floored at 1 (so for size < 4
// "in" and "main" together can hold more than size entries).
func NewTwoQ[K comparable, V any](size int) *TwoQ[K, V] {
	if size < 1 {
		panic("cache: TwoQ capacity must be at least 1")
	}
	return &TwoQ[K, V]{
		in:   NewFIFO[K, V](max1(size / 4)),
		out:  NewFIFO[K, struct{}](max1(size / 2)),
		main: NewLRU[K, V](max1(size - size/4)),
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Find looks in main first, then in. A hit in "in" does not promote the
// entry — only a ghost hit in "out" followed by a Push does that.
func (q *TwoQ[K, V]) Find(key K) (V, bool) {
	if v, ok := q.main.Find(key); ok {
		return v, true
	}
	return q.in.Find(key)
}

// Push admits key/value. If key is a recognized ghost (present in "out") it
// is promoted straight into "main"; otherwise it enters "in", and whatever
// "in" evicts becomes a ghost key in "out" (out's own FIFO eviction of
// older ghosts is silently discarded — losing track of a very old ghost
// just means a future re-admission goes through "in" again).
func (q *TwoQ[K, V]) Push(key K, value V) (evictedKey K, evictedValue V, evicted bool) {
	if _, isGhost := q.out.Find(key); isGhost {
		logging.Debug("cache: promoted ghost entry to main", "key", key)
		e, ok := q.main.Push(key, value)
		if ok {
			logging.Debug("cache: evicted from main", "key", e.key)
		}
		return e.key, e.value, ok
	}

	logging.Debug("cache: admitted into in", "key", key)
	e, ok := q.in.Push(key, value)
	if ok {
		logging.Debug("cache: evicted from in, demoted to ghost", "key", e.key)
		q.out.Push(e.key, struct{}{})
	}
	return e.key, e.value, ok
}

// Clear empties all three sub-caches.
func (q *TwoQ[K, V]) Clear() {
	q.in.Clear()
	q.out.Clear()
	q.main.Clear()
}

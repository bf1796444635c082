package cmap

import (
	"errors"
	"iter"
)

var errNotPositioned = errors.New("cmap: iterator is not positioned on an entry")

// Iterator is a forward, read-only cursor over every entry of a table.
//
// It walks bucket chains without taking any lock. The caller must ensure
// no goroutine inserts, erases, or clears while an Iterator is in use;
// otherwise its behaviour is undefined. Use Range for a locked traversal.
//
// An Iterator is one-shot: once Next returns false it stays exhausted.
type Iterator[K comparable, V any] struct {
	buckets []bucket[K, V]
	idx     int
	cur     *entry[K, V]
	done    bool
}

// Iter returns an Iterator positioned before the first entry.
//
//	it := t.Iter()
//	for it.Next() {
//		fmt.Println(it.Key(), it.Value())
//	}
func (t *Table[K, V]) Iter() *Iterator[K, V] {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	return &Iterator[K, V]{buckets: t.buckets, idx: -1}
}

// Next advances to the next entry, moving on to the next non-empty bucket
// when the current chain is exhausted. It returns false at the end.
func (it *Iterator[K, V]) Next() bool {
	if it.done {
		return false
	}
	if it.cur != nil {
		it.cur = it.cur.next
	}
	for it.cur == nil {
		it.idx++
		if it.idx >= len(it.buckets) {
			it.done = true
			it.buckets = nil
			return false
		}
		it.cur = it.buckets[it.idx].head
	}
	return true
}

// Done reports whether the iterator has reached the end.
func (it *Iterator[K, V]) Done() bool {
	return it.done
}

// Key returns the key of the current entry.
// It panics if Next has not returned true.
func (it *Iterator[K, V]) Key() K {
	if it.cur == nil || it.done {
		panic(errNotPositioned)
	}
	return it.cur.key
}

// Value returns the value of the current entry.
// It panics if Next has not returned true.
func (it *Iterator[K, V]) Value() V {
	if it.cur == nil || it.done {
		panic(errNotPositioned)
	}
	return it.cur.value
}

// All returns the entries as a single-use sequence backed by an Iterator.
// The same no-concurrent-writers rule applies. Ranging over the returned
// sequence a second time yields nothing; call All again for a new pass.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	it := t.Iter()
	return func(yield func(K, V) bool) {
		for it.Next() {
			if !yield(it.Key(), it.Value()) {
				return
			}
		}
	}
}

// Range calls fn for each entry, holding one bucket's read lock at a time.
//
// The callback returns false to stop iteration. Each bucket is seen
// consistently but the table as a whole is not a snapshot. fn must not
// write to the table: the read lock is held while it runs.
func (t *Table[K, V]) Range(fn func(key K, value V) bool) {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	for i := range t.buckets {
		if !t.buckets[i].rangeLocked(fn) {
			return
		}
	}
}

// Keys returns all keys.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, t.Len())
	t.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Item is a key/value pair.
type Item[K comparable, V any] struct {
	Key   K
	Value V
}

// Items returns all key/value pairs.
func (t *Table[K, V]) Items() []Item[K, V] {
	items := make([]Item[K, V], 0, t.Len())
	t.Range(func(key K, value V) bool {
		items = append(items, Item[K, V]{Key: key, Value: value})
		return true
	})
	return items
}

// Stats summarizes how entries are spread over the buckets.
type Stats struct {
	Buckets         int     `json:"buckets" yaml:"buckets"`
	Entries         int     `json:"entries" yaml:"entries"`
	NonEmptyBuckets int     `json:"non_empty_buckets" yaml:"non_empty_buckets"`
	MaxChainLength  int     `json:"max_chain_length" yaml:"max_chain_length"`
	LoadFactor      float64 `json:"load_factor" yaml:"load_factor"`
}

// Stats walks every bucket under its read lock and reports occupancy.
func (t *Table[K, V]) Stats() Stats {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	s := Stats{Buckets: len(t.buckets)}
	for i := range t.buckets {
		n := t.buckets[i].len()
		s.Entries += n
		if n > 0 {
			s.NonEmptyBuckets++
		}
		if n > s.MaxChainLength {
			s.MaxChainLength = n
		}
	}
	s.LoadFactor = float64(s.Entries) / float64(s.Buckets)
	return s
}

// ChainLengths returns the chain length of every bucket, indexed by bucket.
func (t *Table[K, V]) ChainLengths() []int {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	lengths := make([]int, len(t.buckets))
	for i := range t.buckets {
		lengths[i] = t.buckets[i].len()
	}
	return lengths
}

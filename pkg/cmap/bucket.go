package cmap

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// entry is one key/value node. Each entry owns its successor.
type entry[K comparable, V any] struct {
	key   K
	value V
	next  *entry[K, V]
}

// bucket is a singly linked chain of entries guarded by its own RWMutex.
//
// The chain is only traversed, mutated, or dropped while mu is held.
// The trailing pad keeps neighbouring buckets' locks off one cache line.
type bucket[K comparable, V any] struct {
	mu   sync.RWMutex
	head *entry[K, V]
	_    cpu.CacheLinePad
}

// find copies out the value stored for key.
func (b *bucket[K, V]) find(key K) (V, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for e := b.head; e != nil; e = e.next {
		if e.key == key {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// lookup returns the node holding key and its predecessor.
// When key is absent, node is nil and prev is the tail (nil for an empty chain).
// Caller must hold mu.
func (b *bucket[K, V]) lookup(key K) (prev, node *entry[K, V]) {
	node = b.head
	for node != nil && node.key != key {
		prev = node
		node = node.next
	}
	return prev, node
}

// appendAfter links a new node after tail, or as head when the chain is empty.
// Caller must hold mu for writing.
func (b *bucket[K, V]) appendAfter(tail *entry[K, V], key K, value V) {
	e := &entry[K, V]{key: key, value: value}
	if tail == nil {
		b.head = e
		return
	}
	tail.next = e
}

// insert overwrites the value for key in place, or appends a new node.
func (b *bucket[K, V]) insert(key K, value V) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, node := b.lookup(key)
	if node != nil {
		node.value = value
		return
	}
	b.appendAfter(prev, key, value)
}

// insertOrMerge combines delta into the existing value with merge,
// or appends (key, delta) when key is absent.
func (b *bucket[K, V]) insertOrMerge(key K, delta V, merge func(existing, delta V) V) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, node := b.lookup(key)
	if node != nil {
		node.value = merge(node.value, delta)
		return
	}
	b.appendAfter(prev, key, delta)
}

// update stores fn(existing, exists) for key and returns it.
func (b *bucket[K, V]) update(key K, fn func(value V, exists bool) V) V {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, node := b.lookup(key)
	if node != nil {
		node.value = fn(node.value, true)
		return node.value
	}
	var zero V
	v := fn(zero, false)
	b.appendAfter(prev, key, v)
	return v
}

// unlink removes node from the chain. Caller must hold mu for writing.
func (b *bucket[K, V]) unlink(prev, node *entry[K, V]) {
	if prev == nil {
		b.head = node.next
	} else {
		prev.next = node.next
	}
	node.next = nil
}

// erase removes key and reports whether it was present.
func (b *bucket[K, V]) erase(key K) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, node := b.lookup(key)
	if node == nil {
		return false
	}
	b.unlink(prev, node)
	return true
}

// pop removes key and returns the value it held.
func (b *bucket[K, V]) pop(key K) (V, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, node := b.lookup(key)
	if node == nil {
		var zero V
		return zero, false
	}
	b.unlink(prev, node)
	return node.value, true
}

// clear drops the whole chain and returns how many entries it held.
func (b *bucket[K, V]) clear() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for e := b.head; e != nil; {
		next := e.next
		e.next = nil
		e = next
		n++
	}
	b.head = nil
	return n
}

// len returns the chain length.
func (b *bucket[K, V]) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for e := b.head; e != nil; e = e.next {
		n++
	}
	return n
}

// rangeLocked calls fn for every entry while holding the read lock.
// It returns false if fn asked to stop.
func (b *bucket[K, V]) rangeLocked(fn func(key K, value V) bool) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for e := b.head; e != nil; e = e.next {
		if !fn(e.key, e.value) {
			return false
		}
	}
	return true
}

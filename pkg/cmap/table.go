package cmap

// DefaultBucketCount is the default number of buckets.
const DefaultBucketCount = 1031

// noCopy makes `go vet` report copies of a Table.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Table is a concurrent hash table with a fixed number of buckets.
//
// The bucket count never changes after construction; there is no rehash.
// A Table must not be copied after first use.
type Table[K comparable, V any] struct {
	_       noCopy
	buckets []bucket[K, V]
	n       uint64
	hash    Hasher[K]
}

// Option configures a Table.
type Option[K comparable] func(*options[K])

type options[K comparable] struct {
	hasher Hasher[K]
}

// WithHasher sets the hash function used to route keys.
func WithHasher[K comparable](h Hasher[K]) Option[K] {
	return func(o *options[K]) {
		if h != nil {
			o.hasher = h
		}
	}
}

// New creates a table with DefaultBucketCount buckets.
func New[K comparable, V any](opts ...Option[K]) *Table[K, V] {
	return NewWithBuckets[K, V](DefaultBucketCount, opts...)
}

// NewWithBuckets creates a table with bucketCount buckets.
// It panics with ErrInvalidBucketCount if bucketCount is below one.
func NewWithBuckets[K comparable, V any](bucketCount int, opts ...Option[K]) *Table[K, V] {
	if bucketCount < 1 {
		panic(ErrInvalidBucketCount)
	}

	o := options[K]{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hasher == nil {
		o.hasher = MapHasher[K]()
	}

	return &Table[K, V]{
		buckets: make([]bucket[K, V], bucketCount),
		n:       uint64(bucketCount),
		hash:    o.hasher,
	}
}

// bucketFor returns the bucket that owns key.
func (t *Table[K, V]) bucketFor(key K) *bucket[K, V] {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	return &t.buckets[t.hash(key)%t.n]
}

// Find returns the value stored for key and whether it was present.
func (t *Table[K, V]) Find(key K) (V, bool) {
	return t.bucketFor(key).find(key)
}

// Has reports whether key is present.
func (t *Table[K, V]) Has(key K) bool {
	_, ok := t.Find(key)
	return ok
}

// Insert stores value for key, overwriting any previous value.
func (t *Table[K, V]) Insert(key K, value V) {
	t.bucketFor(key).insert(key, value)
}

// InsertOrMerge stores delta for key when absent, otherwise replaces the
// existing value with merge(existing, delta). merge runs under the bucket's
// write lock and must not call back into the table.
func (t *Table[K, V]) InsertOrMerge(key K, delta V, merge func(existing, delta V) V) {
	t.bucketFor(key).insertOrMerge(key, delta, merge)
}

// Update atomically replaces the value for key with fn(existing, exists)
// and returns the stored value. fn must not call back into the table.
func (t *Table[K, V]) Update(key K, fn func(value V, exists bool) V) V {
	return t.bucketFor(key).update(key, fn)
}

// Erase removes key. Erasing an absent key is a no-op.
func (t *Table[K, V]) Erase(key K) {
	t.bucketFor(key).erase(key)
}

// Pop removes key and returns the value it held.
func (t *Table[K, V]) Pop(key K) (V, bool) {
	return t.bucketFor(key).pop(key)
}

// Clear empties every bucket, one bucket at a time.
//
// No lock spans the whole table: writes to buckets already cleared, or not
// yet reached, may interleave with the clear. It is not an atomic snapshot.
func (t *Table[K, V]) Clear() {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	for i := range t.buckets {
		t.buckets[i].clear()
	}
}

// Destroy releases every chain and the bucket array.
//
// The caller must guarantee that no other goroutine uses the table during
// or after Destroy; any later call panics with ErrDestroyed.
func (t *Table[K, V]) Destroy() {
	if t.buckets == nil {
		return
	}
	for i := range t.buckets {
		t.buckets[i].clear()
	}
	t.buckets = nil
}

// Destroyed reports whether Destroy has been called.
func (t *Table[K, V]) Destroyed() bool {
	return t.buckets == nil
}

// BucketCount returns the fixed number of buckets.
func (t *Table[K, V]) BucketCount() int {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	return int(t.n)
}

// BucketIndex returns the index of the bucket that owns key.
func (t *Table[K, V]) BucketIndex(key K) int {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	return int(t.hash(key) % t.n)
}

// Len returns the number of entries, counted one bucket at a time.
// Under concurrent writes the result is approximate.
func (t *Table[K, V]) Len() int {
	if t.buckets == nil {
		panic(ErrDestroyed)
	}
	n := 0
	for i := range t.buckets {
		n += t.buckets[i].len()
	}
	return n
}

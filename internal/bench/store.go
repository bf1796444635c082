package bench

import (
	"fmt"
	"sync"

	"github.com/yndnr/bucketmap/internal/config"
	"github.com/yndnr/bucketmap/pkg/cmap"
)

// Store is the key/value surface a benchmark drives.
type Store interface {
	Name() string
	Find(key int) (int64, bool)
	Insert(key int, value int64)
	Accumulate(key int, delta int64)
	Erase(key int)
	Len() int
	Clear()
}

// NewStore builds the store named by impl from the bench section.
func NewStore(impl string, cfg config.BenchSection) (Store, error) {
	switch impl {
	case config.ImplSharded:
		h, err := cmap.HasherByName[int](cfg.Hasher)
		if err != nil {
			return nil, err
		}
		return NewShardedStore(cfg.Buckets, h), nil
	case config.ImplLocked:
		return NewLockedStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", impl)
	}
}

// ShardedStore runs on a cmap.Table with one lock per bucket.
type ShardedStore struct {
	t *cmap.Table[int, int64]
}

// NewShardedStore creates a table with the given bucket count and hasher.
func NewShardedStore(buckets int, h cmap.Hasher[int]) *ShardedStore {
	return &ShardedStore{t: cmap.NewWithBuckets[int, int64](buckets, cmap.WithHasher(h))}
}

func (s *ShardedStore) Name() string {
	return config.ImplSharded
}

func (s *ShardedStore) Find(key int) (int64, bool) {
	return s.t.Find(key)
}

func (s *ShardedStore) Insert(key int, value int64) {
	s.t.Insert(key, value)
}

func (s *ShardedStore) Accumulate(key int, d int64) {
	cmap.InsertOrAccumulate(s.t, key, d)
}

func (s *ShardedStore) Erase(key int) {
	s.t.Erase(key)
}

func (s *ShardedStore) Len() int {
	return s.t.Len()
}

func (s *ShardedStore) Clear() {
	s.t.Clear()
}

// Stats reports bucket occupancy. It satisfies metric.StatsSource.
func (s *ShardedStore) Stats() cmap.Stats {
	return s.t.Stats()
}

// Table exposes the underlying table.
func (s *ShardedStore) Table() *cmap.Table[int, int64] {
	return s.t
}

// LockedStore is the baseline: a Go map behind one mutex.
type LockedStore struct {
	mu sync.Mutex
	m  map[int]int64
}

// NewLockedStore creates an empty LockedStore.
func NewLockedStore() *LockedStore {
	return &LockedStore{m: make(map[int]int64)}
}

func (s *LockedStore) Name() string {
	return config.ImplLocked
}

func (s *LockedStore) Find(key int) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *LockedStore) Insert(key int, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *LockedStore) Accumulate(key int, delta int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] += delta
}

func (s *LockedStore) Erase(key int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (s *LockedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *LockedStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.m)
}

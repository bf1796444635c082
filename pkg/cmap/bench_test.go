package cmap

import (
	"fmt"
	"sync"
	"testing"
)

// lockedMap is the single-mutex baseline the table is measured against.
type lockedMap struct {
	mu sync.Mutex
	m  map[int]int
}

func (l *lockedMap) insert(k, v int) {
	l.mu.Lock()
	l.m[k] = v
	l.mu.Unlock()
}

func (l *lockedMap) find(k int) (int, bool) {
	l.mu.Lock()
	v, ok := l.m[k]
	l.mu.Unlock()
	return v, ok
}

func (l *lockedMap) erase(k int) {
	l.mu.Lock()
	delete(l.m, k)
	l.mu.Unlock()
}

func BenchmarkTable_InsertFindErase(b *testing.B) {
	for _, buckets := range []int{1, 31, 1031} {
		b.Run(fmt.Sprintf("buckets=%d", buckets), func(b *testing.B) {
			m := NewWithBuckets[int, int](buckets)
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					m.Insert(i, i)
					m.Find(i)
					m.Erase(i)
					i++
				}
			})
		})
	}
}

func BenchmarkLockedMap_InsertFindErase(b *testing.B) {
	l := &lockedMap{m: make(map[int]int)}
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			l.insert(i, i)
			l.find(i)
			l.erase(i)
			i++
		}
	})
}

func BenchmarkTable_Find(b *testing.B) {
	m := New[int, int]()
	for i := 0; i < 10000; i++ {
		m.Insert(i, i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Find(i % 10000)
			i++
		}
	})
}

func BenchmarkInsertOrAccumulate(b *testing.B) {
	m := New[int, int64]()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			InsertOrAccumulate(m, i%1024, 1)
			i++
		}
	})
}

func BenchmarkHashers(b *testing.B) {
	for _, name := range []string{HasherMaphash, HasherMurmur3, HasherXXHash, HasherIdentity} {
		h, _ := HasherByName[int](name)
		b.Run(name, func(b *testing.B) {
			var sink uint64
			for i := 0; i < b.N; i++ {
				sink += h(i)
			}
			_ = sink
		})
	}
}

package cmap

import (
	"reflect"
	"testing"
	"time"
)

// chainKeys returns the keys of b in chain order.
func chainKeys[K comparable, V any](b *bucket[K, V]) []K {
	var keys []K
	b.rangeLocked(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

func TestBucket_InsertAppendsAtTail(t *testing.T) {
	var b bucket[int, string]

	b.insert(1, "a")
	b.insert(2, "b")
	b.insert(3, "c")
	b.insert(2, "B")

	if got, want := chainKeys(&b), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("chain = %v, want %v", got, want)
	}
	if v, ok := b.find(2); !ok || v != "B" {
		t.Errorf("find(2) = (%q, %v), want (\"B\", true)", v, ok)
	}
}

func TestBucket_Erase(t *testing.T) {
	tests := []struct {
		name  string
		erase int
		want  []int
	}{
		{"head", 1, []int{2, 3}},
		{"middle", 2, []int{1, 3}},
		{"tail", 3, []int{1, 2}},
		{"absent", 9, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bucket[int, int]
			for _, k := range []int{1, 2, 3} {
				b.insert(k, k)
			}

			removed := b.erase(tt.erase)
			if removed != (tt.erase != 9) {
				t.Errorf("erase(%d) = %v", tt.erase, removed)
			}
			if got := chainKeys(&b); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chain = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBucket_EraseOnlyEntry(t *testing.T) {
	var b bucket[int, int]
	b.insert(1, 1)

	if !b.erase(1) {
		t.Fatal("erase(1) = false, want true")
	}
	if b.head != nil {
		t.Error("head should be nil after erasing the only entry")
	}
	b.insert(2, 2)
	if got := chainKeys(&b); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("chain = %v, want [2]", got)
	}
}

func TestBucket_InsertOrMerge(t *testing.T) {
	var b bucket[string, int]
	sum := func(existing, delta int) int { return existing + delta }

	b.insertOrMerge("x", 20, sum)
	b.insertOrMerge("x", 30, sum)
	b.insertOrMerge("y", 5, sum)

	if v, _ := b.find("x"); v != 50 {
		t.Errorf("find(x) = %d, want 50", v)
	}
	if v, _ := b.find("y"); v != 5 {
		t.Errorf("find(y) = %d, want 5", v)
	}
}

func TestBucket_Clear(t *testing.T) {
	var b bucket[int, int]
	for i := 0; i < 10; i++ {
		b.insert(i, i)
	}

	if n := b.clear(); n != 10 {
		t.Errorf("clear() = %d, want 10", n)
	}
	if b.len() != 0 {
		t.Errorf("len() = %d, want 0", b.len())
	}
	if n := b.clear(); n != 0 {
		t.Errorf("clear() on empty = %d, want 0", n)
	}
}

func TestBucketIndependence(t *testing.T) {
	m := NewWithBuckets[int, int](4, WithHasher(IdentityInt[int]()))

	// Hold bucket 0's write lock as a stalled writer would.
	held := &m.buckets[0]
	held.mu.Lock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Insert(1, 1) // bucket 1
		m.Find(2)      // bucket 2
		m.Erase(3)     // bucket 3
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		held.mu.Unlock()
		t.Fatal("operations on other buckets blocked behind bucket 0's lock")
	}

	// An operation on the held bucket must wait.
	blocked := make(chan struct{})
	go func() {
		defer close(blocked)
		m.Insert(4, 4) // bucket 0
	}()

	select {
	case <-blocked:
		t.Error("Insert into a write-locked bucket did not block")
	case <-time.After(50 * time.Millisecond):
	}

	held.mu.Unlock()
	<-blocked

	if v, ok := m.Find(4); !ok || v != 4 {
		t.Errorf("Find(4) = (%d, %v), want (4, true)", v, ok)
	}
}

func TestSharedReaders(t *testing.T) {
	m := NewWithBuckets[int, int](1)
	m.Insert(1, 1)

	// A held read lock must not block other readers.
	m.buckets[0].mu.RLock()
	defer m.buckets[0].mu.RUnlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Find(1)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Find blocked behind another reader")
	}
}

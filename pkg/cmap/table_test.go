package cmap

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// mustPanicWith fails the test unless fn panics with an error matching want.
func mustPanicWith(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %v, got none", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

func TestNew(t *testing.T) {
	m := New[string, int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.BucketCount() != DefaultBucketCount {
		t.Errorf("BucketCount() = %d, want %d", m.BucketCount(), DefaultBucketCount)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestNewWithBuckets(t *testing.T) {
	for _, n := range []int{1, 2, 3, 16, 1031} {
		t.Run(fmt.Sprintf("buckets=%d", n), func(t *testing.T) {
			m := NewWithBuckets[int, int](n)
			if m.BucketCount() != n {
				t.Errorf("BucketCount() = %d, want %d", m.BucketCount(), n)
			}
		})
	}
}

func TestNewWithBuckets_Invalid(t *testing.T) {
	for _, n := range []int{0, -1} {
		t.Run(fmt.Sprintf("buckets=%d", n), func(t *testing.T) {
			mustPanicWith(t, ErrInvalidBucketCount, func() {
				NewWithBuckets[int, int](n)
			})
		})
	}
}

func TestInsertAndFind(t *testing.T) {
	m := New[string, int]()

	m.Insert("key1", 100)
	m.Insert("key2", 200)

	val, ok := m.Find("key1")
	if !ok || val != 100 {
		t.Errorf("Find(key1) = (%d, %v), want (100, true)", val, ok)
	}

	val, ok = m.Find("key2")
	if !ok || val != 200 {
		t.Errorf("Find(key2) = (%d, %v), want (200, true)", val, ok)
	}

	val, ok = m.Find("nonexistent")
	if ok {
		t.Errorf("Find(nonexistent) = (%d, %v), want (0, false)", val, ok)
	}
}

func TestOverwrite(t *testing.T) {
	m := New[string, int]()

	m.Insert("key1", 100)
	m.Insert("key1", 200)

	val, ok := m.Find("key1")
	if !ok || val != 200 {
		t.Errorf("Find(key1) = (%d, %v), want (200, true)", val, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestErase(t *testing.T) {
	m := New[string, int]()

	m.Insert("key1", 100)
	m.Erase("key1")

	if _, ok := m.Find("key1"); ok {
		t.Error("key1 should not exist after Erase")
	}

	// Erasing an absent key is a no-op.
	m.Erase("key1")
	m.Erase("nonexistent")
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestHas(t *testing.T) {
	m := New[string, int]()
	m.Insert("key1", 100)

	if !m.Has("key1") {
		t.Error("Has(key1) should return true")
	}
	if m.Has("nonexistent") {
		t.Error("Has(nonexistent) should return false")
	}
}

func TestPop(t *testing.T) {
	m := New[string, int]()
	m.Insert("key1", 100)

	val, ok := m.Pop("key1")
	if !ok || val != 100 {
		t.Errorf("Pop(existing) = (%d, %v), want (100, true)", val, ok)
	}
	if m.Has("key1") {
		t.Error("key1 should not exist after Pop")
	}

	val, ok = m.Pop("key1")
	if ok {
		t.Errorf("Pop(nonexistent) = (%d, %v), want (0, false)", val, ok)
	}
}

func TestUpdate(t *testing.T) {
	m := New[string, int]()

	result := m.Update("counter", func(value int, exists bool) int {
		if exists {
			return value + 1
		}
		return 1
	})
	if result != 1 {
		t.Errorf("Update(new) = %d, want 1", result)
	}

	result = m.Update("counter", func(value int, exists bool) int {
		return value + 1
	})
	if result != 2 {
		t.Errorf("Update(existing) = %d, want 2", result)
	}
}

func TestClear(t *testing.T) {
	m := NewWithBuckets[int, int](7)
	for i := 0; i < 100; i++ {
		m.Insert(i, i)
	}

	m.Clear()

	for i := 0; i < 100; i++ {
		if m.Has(i) {
			t.Fatalf("Has(%d) = true after Clear", i)
		}
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", m.Len())
	}
	if m.BucketCount() != 7 {
		t.Errorf("BucketCount() after Clear() = %d, want 7", m.BucketCount())
	}

	// The table stays usable.
	m.Insert(1, 1)
	if v, ok := m.Find(1); !ok || v != 1 {
		t.Errorf("Find(1) after Clear = (%d, %v), want (1, true)", v, ok)
	}
}

func TestDestroy(t *testing.T) {
	m := New[int, string]()
	m.Insert(1, "one")

	m.Destroy()
	if !m.Destroyed() {
		t.Error("Destroyed() should be true after Destroy")
	}

	// Destroy is idempotent.
	m.Destroy()

	mustPanicWith(t, ErrDestroyed, func() { m.Find(1) })
	mustPanicWith(t, ErrDestroyed, func() { m.Insert(2, "two") })
	mustPanicWith(t, ErrDestroyed, func() { m.Erase(1) })
	mustPanicWith(t, ErrDestroyed, func() { m.Clear() })
	mustPanicWith(t, ErrDestroyed, func() { m.Iter() })
	mustPanicWith(t, ErrDestroyed, func() { m.Len() })
	mustPanicWith(t, ErrDestroyed, func() { m.BucketCount() })
	mustPanicWith(t, ErrDestroyed, func() { m.BucketIndex(5) })
}

func TestBucketIndex(t *testing.T) {
	m := NewWithBuckets[int, int](10, WithHasher(IdentityInt[int]()))

	tests := []struct {
		key  int
		want int
	}{
		{0, 0},
		{7, 7},
		{10, 0},
		{23, 3},
	}
	for _, tt := range tests {
		if got := m.BucketIndex(tt.key); got != tt.want {
			t.Errorf("BucketIndex(%d) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestNegativeKeysRouteInRange(t *testing.T) {
	m := NewWithBuckets[int, int](1031, WithHasher(IdentityInt[int]()))

	for _, k := range []int{-1, -1031, -123456789} {
		idx := m.BucketIndex(k)
		if idx < 0 || idx >= 1031 {
			t.Errorf("BucketIndex(%d) = %d, out of range", k, idx)
		}
		m.Insert(k, k)
		if v, ok := m.Find(k); !ok || v != k {
			t.Errorf("Find(%d) = (%d, %v), want (%d, true)", k, v, ok, k)
		}
	}
}

func TestSingleBucketChain(t *testing.T) {
	// One bucket forces every key onto the same chain.
	m := NewWithBuckets[int, int](1)
	for i := 0; i < 50; i++ {
		m.Insert(i, i*10)
	}
	for i := 0; i < 50; i += 2 {
		m.Erase(i)
	}
	for i := 0; i < 50; i++ {
		v, ok := m.Find(i)
		if i%2 == 0 {
			if ok {
				t.Errorf("Find(%d) = (%d, true), want absent", i, v)
			}
			continue
		}
		if !ok || v != i*10 {
			t.Errorf("Find(%d) = (%d, %v), want (%d, true)", i, v, ok, i*10)
		}
	}
	if m.Len() != 25 {
		t.Errorf("Len() = %d, want 25", m.Len())
	}
}

func TestStructValue(t *testing.T) {
	type Person struct {
		Name string
		Age  int
	}

	m := New[string, Person]()
	m.Insert("person1", Person{Name: "Alice", Age: 30})
	m.Insert("person2", Person{Name: "Bob", Age: 25})

	val, ok := m.Find("person1")
	if !ok || val.Name != "Alice" || val.Age != 30 {
		t.Errorf("Find(person1) = (%+v, %v), want ({Alice 30}, true)", val, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int, int]()
	var wg sync.WaitGroup
	numGoroutines := 50
	numOps := 1000

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				m.Insert(base*numOps+j, j)
			}
		}(i)
	}
	wg.Wait()

	if m.Len() != numGoroutines*numOps {
		t.Errorf("Len() = %d, want %d", m.Len(), numGoroutines*numOps)
	}

	// Mixed operations on disjoint key ranges: each goroutine must always
	// read back its own write.
	errs := make(chan string, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := base*numOps + j
				m.Insert(key, j*2)
				if v, ok := m.Find(key); !ok || v != j*2 {
					errs <- fmt.Sprintf("Find(%d) = (%d, %v), want (%d, true)", key, v, ok, j*2)
					return
				}
				m.Erase(key)
				if m.Has(key) {
					errs <- fmt.Sprintf("Has(%d) = true after Erase", key)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}

	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestConcurrentSameKey(t *testing.T) {
	m := New[string, int]()
	const writers = 64

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			m.Insert("k", v)
		}(i)
	}
	wg.Wait()

	v, ok := m.Find("k")
	if !ok {
		t.Fatal("Find(k) = absent after concurrent inserts")
	}
	if v < 0 || v >= writers {
		t.Errorf("Find(k) = %d, want one of the inserted values [0, %d)", v, writers)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestConcurrentClearAndInsert(t *testing.T) {
	m := NewWithBuckets[int, int](31)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			m.Clear()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			m.Insert(i%500, i)
		}
	}()
	wg.Wait()

	if n := m.Len(); n > 500 {
		t.Errorf("Len() = %d, want at most 500", n)
	}
}

func TestDemoScenario(t *testing.T) {
	m := NewWithBuckets[int, string](1031)
	want := map[int]string{
		10: "hello",
		20: "world",
		30: "ok",
		40: "noahyzhang",
	}
	for k, v := range want {
		m.Insert(k, v)
	}

	seen := make(map[int]string)
	it := m.Iter()
	for it.Next() {
		if _, dup := seen[it.Key()]; dup {
			t.Errorf("key %d yielded twice", it.Key())
		}
		seen[it.Key()] = it.Value()
	}
	if len(seen) != len(want) {
		t.Errorf("iterated %d pairs, want %d", len(seen), len(want))
	}
	for k, v := range want {
		if seen[k] != v {
			t.Errorf("iterated[%d] = %q, want %q", k, seen[k], v)
		}
	}

	if v, ok := m.Find(10); !ok || v != "hello" {
		t.Errorf("Find(10) = (%q, %v), want (\"hello\", true)", v, ok)
	}
	m.Erase(10)
	if _, ok := m.Find(10); ok {
		t.Error("Find(10) should be absent after Erase")
	}
}

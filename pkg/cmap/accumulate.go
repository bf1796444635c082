package cmap

import "golang.org/x/exp/constraints"

// Addable is the set of value types that support the + operator.
type Addable interface {
	constraints.Integer | constraints.Float | constraints.Complex | ~string
}

// Accumulator is implemented by values that know how to absorb a delta,
// e.g. a struct of counters summed field by field.
type Accumulator[V any] interface {
	Accumulate(delta V) V
}

// InsertOrAccumulate stores delta for key when absent, otherwise adds delta
// to the existing value.
//
//	hits := cmap.New[string, int]()
//	cmap.InsertOrAccumulate(hits, "/index", 1)
func InsertOrAccumulate[K comparable, V Addable](t *Table[K, V], key K, delta V) {
	t.InsertOrMerge(key, delta, add[V])
}

// InsertOrCombine stores delta for key when absent, otherwise replaces the
// existing value with existing.Accumulate(delta).
func InsertOrCombine[K comparable, V Accumulator[V]](t *Table[K, V], key K, delta V) {
	t.InsertOrMerge(key, delta, combine[V])
}

func add[V Addable](existing, delta V) V {
	return existing + delta
}

func combine[V Accumulator[V]](existing, delta V) V {
	return existing.Accumulate(delta)
}

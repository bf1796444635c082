// Package cmap provides a fixed-size concurrent hash table for bucketmap.
//
// The table is an array of buckets fixed at construction. Each bucket is a
// singly linked chain of entries guarded by its own sync.RWMutex:
//
//   - Routing: hash(key) mod bucket count, with a pluggable Hasher
//   - Fine-grained Locking: readers share a bucket, writers exclude it
//   - Accumulate-on-conflict: InsertOrAccumulate / InsertOrCombine
//   - Iteration: a lock-free snapshot Iterator and a locked Range
//
// Usage:
//
//	t := cmap.New[int, string]()
//	t.Insert(10, "hello")
//	v, ok := t.Find(10)
//	t.Erase(10)
//
// Thread Safety:
//
// Find, Insert, InsertOrMerge, Update, Erase, Pop and Clear are safe for
// concurrent use. No operation holds more than one bucket lock, so the table
// cannot deadlock on its own. Iter and All read live chains without locks
// and require that no writer runs during the traversal. Destroy requires
// exclusive access.
//
// The table never grows. Chains have no length bound, so a poor hash or a
// small bucket count degrades operations to O(chain length).
package cmap

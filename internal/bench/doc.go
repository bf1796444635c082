// Package bench measures the sharded table against a single-mutex map.
//
// A Runner starts one goroutine per worker. Each worker owns a disjoint key
// range and issues a random mix of finds, inserts, erases and accumulates
// against a Store until its operation budget or the configured duration
// runs out. Compare runs both stores with the same seed and reports the
// throughput ratio.
//
// Key ranges follow one of two layouts:
//
//	doubling  worker 0: [1, r]  worker 1: [r+1, 2r]  worker 2: [2r+1, 4r] ...
//	uniform   worker i: [i*r+1, (i+1)*r]
package bench

// Package config defines the benchmark configuration structure.
//
// Configuration is loaded by internal/infra/confloader on top of Default:
//
//	bench:
//	  impl: sharded
//	  buckets: 1031
//	  hasher: maphash
//	  workers: 10
//	  ops_per_worker: 100000
//	  key_space: doubling
//	  key_range: 1000
//	metrics:
//	  enabled: false
//	log:
//	  level: info
//
// Callers run Sanitize and then Verify before using a Config. Verify
// rejects a bucket count below one so the table constructor never sees it.
package config

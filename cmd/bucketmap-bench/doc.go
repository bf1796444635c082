// Command bucketmap-bench exercises the bucketed concurrent hash table in
// pkg/cmap and compares it with a map behind a single mutex.
//
// Usage:
//
//	bucketmap-bench [global flags] run [--impl sharded|locked|both] [--workers N] [--ops N | --duration D]
//	bucketmap-bench demo
//	bucketmap-bench [-o table|json|yaml] config show
//	bucketmap-bench config validate FILE
//	bucketmap-bench version
//
// Configuration is layered: defaults, then the --config YAML file, then
// BUCKETMAP_SECTION__KEY environment variables, then flags.
package main

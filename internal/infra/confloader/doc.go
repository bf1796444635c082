// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags, passed to LoadMap as dotted keys
//  2. Environment variables, BUCKETMAP_SECTION__KEY
//  3. The YAML configuration file
//  4. Defaults already set on the target struct
//
// Watcher reports writes to a configuration file through fsnotify so a
// running process can pick up changes that are safe to apply live.
package confloader

// Package command provides the bucketmap-bench command definitions.
//
// Commands are built with urfave/cli/v2:
//
//   - root.go: App, global flags and output selection
//   - settings.go: layered config loading and logger setup
//   - run.go: the benchmark runner, metrics endpoint and config watch
//   - demo.go: a guided tour of the table API
//   - config.go: config show and config validate
//   - version.go: build information
package command

// Package output renders bench results and configuration for the terminal.
//
//   - formatter.go: Formatter interface, ParseFormat and factory
//   - table.go: aligned tables via text/tabwriter
//   - json.go: indented JSON
//   - yaml.go: YAML via gopkg.in/yaml.v3
//   - progress.go: live operation counter for running benchmarks
package output

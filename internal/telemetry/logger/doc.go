// Package logger provides structured logging for bucketmap.
//
// This package wraps log/slog:
//
//   - logger.go: Logger interface, configuration and the global default
//   - context.go: Context-aware logging with run and worker IDs
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Context propagation for benchmark runs
//
// The pkg/cmap table itself never logs; only the harness does.
package logger

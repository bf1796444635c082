// Package buildinfo reports which bucketmap-bench binary produced a result.
//
// Version, Commit and BuildTime are set with ldflags by release builds:
//
//	go build -ldflags "-X github.com/yndnr/bucketmap/internal/infra/buildinfo.Version=v0.3.0" ./cmd/bucketmap-bench
//
// Plain go build and go install binaries fall back to the module version and
// VCS stamp the toolchain embeds. Platform and CPU count are included because
// contention numbers are meaningless without them.
package buildinfo

package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bucketmap/internal/config"
	"github.com/yndnr/bucketmap/internal/infra/confloader"
	"github.com/yndnr/bucketmap/internal/telemetry/logger"
)

// flagKeys maps command-line flags to configuration keys. Only flags the
// user actually set override the file and environment.
var flagKeys = []struct {
	flag string
	key  string
}{
	{"impl", "bench.impl"},
	{"buckets", "bench.buckets"},
	{"hasher", "bench.hasher"},
	{"workers", "bench.workers"},
	{"ops", "bench.ops_per_worker"},
	{"duration", "bench.duration"},
	{"key-space", "bench.key_space"},
	{"key-range", "bench.key_range"},
	{"read-ratio", "bench.read_ratio"},
	{"erase-ratio", "bench.erase_ratio"},
	{"accumulate-ratio", "bench.accumulate_ratio"},
	{"rate-limit", "bench.rate_limit"},
	{"seed", "bench.seed"},
	{"metrics-addr", "metrics.addr"},
	{"log-level", "log.level"},
	{"log-format", "log.format"},
}

// flagOverrides collects the set flags as dotted configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for _, fk := range flagKeys {
		if c.IsSet(fk.flag) {
			overrides[fk.key] = c.Value(fk.flag)
		}
	}
	if c.IsSet("metrics-addr") {
		overrides["metrics.enabled"] = true
	}
	if c.IsSet("no-progress") && c.Bool("no-progress") {
		overrides["bench.progress"] = false
	}
	if c.IsSet("no-verify") && c.Bool("no-verify") {
		overrides["bench.verify"] = false
	}
	return overrides
}

// loadConfig loads defaults, the config file, environment and flags, in
// that order, then sanitizes and verifies the result.
func loadConfig(c *cli.Context) (*config.Config, *confloader.Loader, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if path := ParseGlobalFlags(c).ConfigFile; path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if overrides := flagOverrides(c); len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, nil, fmt.Errorf("apply flags: %w", err)
		}
	}

	cfg = config.Sanitize(cfg)
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, loader, nil
}

// initLogger creates the process logger on stderr and makes it the default.
func initLogger(c *cli.Context, cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: stderr(c),
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

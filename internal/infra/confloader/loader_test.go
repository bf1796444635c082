package confloader

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

type testConfig struct {
	Bench struct {
		Impl         string  `koanf:"impl"`
		Buckets      int     `koanf:"buckets"`
		OpsPerWorker int     `koanf:"ops_per_worker"`
		ReadRatio    float64 `koanf:"read_ratio"`
	} `koanf:"bench"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bucketmap.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.FilePath() != "/path/to/config.yaml" {
		t.Errorf("FilePath() = %q, want %q", l.FilePath(), "/path/to/config.yaml")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
bench:
  impl: sharded
  buckets: 97
log:
  level: debug
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Bench.Impl != "sharded" {
		t.Errorf("Bench.Impl = %q, want %q", cfg.Bench.Impl, "sharded")
	}
	if cfg.Bench.Buckets != 97 {
		t.Errorf("Bench.Buckets = %d, want 97", cfg.Bench.Buckets)
	}
	if src := l.Source("bench.buckets"); src != SourceFile {
		t.Errorf("Source(bench.buckets) = %q, want %q", src, SourceFile)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("BUCKETMAP_BENCH__OPS_PER_WORKER", "500")
	t.Setenv("BUCKETMAP_LOG__LEVEL", "warn")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Bench.OpsPerWorker != 500 {
		t.Errorf("Bench.OpsPerWorker = %d, want 500", cfg.Bench.OpsPerWorker)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if src := l.Source("log.level"); src != SourceEnv {
		t.Errorf("Source(log.level) = %q, want %q", src, SourceEnv)
	}
}

func TestLoader_EnvKey(t *testing.T) {
	l := NewLoader()

	tests := map[string]string{
		"BUCKETMAP_BENCH__OPS_PER_WORKER": "bench.ops_per_worker",
		"BUCKETMAP_LOG__LEVEL":            "log.level",
		"BUCKETMAP_DEBUG":                 "debug",
	}
	for in, want := range tests {
		if got := l.envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_METRICS__ADDR", ":9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if addr := l.All()["metrics.addr"]; addr != ":9090" {
		t.Errorf("metrics.addr = %v, want %q", addr, ":9090")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()

	if err := l.LoadMap(map[string]any{"bench.impl": "locked"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Bench.Impl != "locked" {
		t.Errorf("Bench.Impl = %q, want %q (dotted map keys must nest)", cfg.Bench.Impl, "locked")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
bench:
  impl: sharded
  buckets: 97
  read_ratio: 0.25
`)
	t.Setenv("BUCKETMAP_BENCH__BUCKETS", "211")

	l := NewLoader(WithConfigFile(path))

	var cfg testConfig
	cfg.Log.Level = "info"
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := l.LoadMap(map[string]any{"bench.impl": "both"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if cfg.Bench.Buckets != 211 {
		t.Errorf("Buckets = %d, want 211 (env should override file)", cfg.Bench.Buckets)
	}
	if cfg.Bench.Impl != "both" {
		t.Errorf("Impl = %q, want %q (flags should override file)", cfg.Bench.Impl, "both")
	}
	if cfg.Bench.ReadRatio != 0.25 {
		t.Errorf("ReadRatio = %v, want 0.25", cfg.Bench.ReadRatio)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default %q", cfg.Log.Level, "info")
	}
}

func TestLoader_Reload(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\nbench:\n  buckets: 7\n")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := l.LoadMap(map[string]any{"bench.buckets": 13}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("log:\n  level: debug\nbench:\n  buckets: 7\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var next testConfig
	if err := l.Reload(&next); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if next.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q after reload", next.Log.Level, "debug")
	}
	if next.Bench.Buckets != 13 {
		t.Errorf("Buckets = %d, want 13 (flag override must survive reload)", next.Bench.Buckets)
	}
}

func TestLoader_Reload_BadFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("log: [unterminated\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := l.Reload(&cfg); err == nil {
		t.Error("Reload() should fail on malformed YAML")
	}
}

func TestLoader_Sources(t *testing.T) {
	path := writeConfig(t, `
bench:
  impl: sharded
  buckets: 97
log:
  level: info
`)
	t.Setenv("BUCKETMAP_BENCH__BUCKETS", "211")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := l.LoadMap(map[string]any{"log.level": "debug"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	tests := []struct {
		key    string
		value  any
		source string
	}{
		{"bench.impl", "sharded", SourceFile},
		{"bench.buckets", "211", SourceEnv},
		{"log.level", "debug", SourceFlag},
	}

	all := l.All()
	for _, tt := range tests {
		if got := all[tt.key]; got != tt.value {
			t.Errorf("All()[%q] = %v, want %v", tt.key, got, tt.value)
		}
		if got := l.Source(tt.key); got != tt.source {
			t.Errorf("Source(%q) = %q, want %q", tt.key, got, tt.source)
		}
	}
	if got := l.Source("bench.workers"); got != "" {
		t.Errorf("Source(bench.workers) = %q, want empty for an unset key", got)
	}
}

func TestLoader_Keys(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{
		"log.level":     "warn",
		"bench.workers": 4,
		"bench.impl":    "both",
	}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	want := []string{"bench.impl", "bench.workers", "log.level"}
	if got := l.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestLoader_Reload_ResetsSources(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")

	l := NewLoader(WithConfigFile(path))
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("bench:\n  buckets: 7\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := l.Reload(&cfg); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if got := l.Source("log.level"); got != "" {
		t.Errorf("Source(log.level) = %q after the key left the file, want empty", got)
	}
	if got := l.Source("bench.buckets"); got != SourceFile {
		t.Errorf("Source(bench.buckets) = %q, want %q", got, SourceFile)
	}
}

// Package confloader loads layered configuration with koanf.
package confloader

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "BUCKETMAP_"

// EnvSectionSeparator splits an environment variable name into nested keys.
// A single underscore stays part of the key name:
//
//	BUCKETMAP_BENCH__OPS_PER_WORKER -> bench.ops_per_worker
const EnvSectionSeparator = "__"

// Source names reported by Source.
const (
	SourceFile = "file"
	SourceEnv  = "env"
	SourceFlag = "flag"
)

// Loader loads configuration from multiple sources.
//
// Sources are layered in call order; later loads override earlier ones.
// Load applies file then environment. Flags go last through LoadMap.
// The loader remembers which layer last set each key.
type Loader struct {
	mu        sync.RWMutex
	k         *koanf.Koanf
	sources   map[string]string
	envPrefix string
	filePath  string
	overrides map[string]any
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		sources:   make(map[string]string),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// FilePath returns the configuration file this loader reads, if any.
func (l *Loader) FilePath() string {
	return l.filePath
}

// Load loads configuration from all sources and unmarshals into target.
// Loading order (later sources override earlier):
//  1. Values already present in target (defaults)
//  2. Configuration file (YAML)
//  3. Environment variables
//  4. Overrides recorded by LoadMap
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadEnv(); err != nil {
		return err
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Reload discards everything loaded so far and runs Load again against a
// fresh koanf instance. Overrides recorded with LoadMap are re-applied on top.
func (l *Loader) Reload(target any) error {
	l.mu.Lock()
	l.k = koanf.New(".")
	l.sources = make(map[string]string)
	overrides := l.overrides
	l.mu.Unlock()

	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("reload config file: %w", err)
		}
	}
	if err := l.LoadEnv(); err != nil {
		return err
	}
	if len(overrides) > 0 {
		if err := l.layer(SourceFlag, mapProvider(overrides), nil); err != nil {
			return fmt.Errorf("reload overrides: %w", err)
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.layer(SourceFile, file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadEnv loads configuration from environment variables.
// Variables use the format PREFIX_SECTION__KEY; see EnvSectionSeparator.
func (l *Loader) LoadEnv() error {
	provider := env.Provider(l.envPrefix, ".", l.envKey)
	if err := l.layer(SourceEnv, provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// envKey maps BUCKETMAP_LOG__LEVEL to log.level.
func (l *Loader) envKey(s string) string {
	s = strings.TrimPrefix(s, l.envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, EnvSectionSeparator, ".")
}

// LoadMap loads flat dotted keys from a map, typically command-line flags.
// The map is remembered and re-applied by Reload.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.layer(SourceFlag, mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}

	l.mu.Lock()
	if l.overrides == nil {
		l.overrides = make(map[string]any, len(data))
	}
	for k, v := range data {
		l.overrides[k] = v
	}
	l.mu.Unlock()
	return nil
}

// layer loads p on its own, merges it over the current values and marks
// every key it set as coming from source.
func (l *Loader) layer(source string, p koanf.Provider, parser koanf.Parser) error {
	next := koanf.New(".")
	if err := next.Load(p, parser); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.k.Merge(next); err != nil {
		return err
	}
	for _, key := range next.Keys() {
		l.sources[key] = source
	}
	return nil
}

func (l *Loader) current() *koanf.Koanf {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.k
}

// Unmarshal unmarshals the loaded configuration into the target struct.
// Uses koanf tags for struct field mapping.
func (l *Loader) Unmarshal(target any) error {
	return l.current().Unmarshal("", target)
}

// All returns the loaded configuration as a flat map of dotted keys.
// Defaults that no source overrode are not included.
func (l *Loader) All() map[string]any {
	return l.current().All()
}

// Keys returns the loaded dotted keys in sorted order.
func (l *Loader) Keys() []string {
	keys := l.current().Keys()
	slices.Sort(keys)
	return keys
}

// Source reports which layer last set key: SourceFile, SourceEnv or
// SourceFlag. It returns "" for keys no source set.
func (l *Loader) Source(key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sources[key]
}

package config

import "strings"

// Sanitize returns a normalized copy of cfg: enum strings are trimmed and
// lower-cased and empty ones fall back to their defaults. The original is
// left untouched. The result is what Verify checks and what gets logged.
func Sanitize(cfg *Config) *Config {
	out := *cfg

	out.Bench.Impl = normalize(out.Bench.Impl, DefaultImpl)
	out.Bench.Hasher = normalize(out.Bench.Hasher, DefaultHasher)
	out.Bench.KeySpace = normalize(out.Bench.KeySpace, DefaultKeySpace)
	out.Metrics.Addr = strings.TrimSpace(out.Metrics.Addr)
	out.Log.Level = normalize(out.Log.Level, DefaultLogLevel)
	out.Log.Format = normalize(out.Log.Format, DefaultLogFormat)

	return &out
}

func normalize(s, def string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return s
}

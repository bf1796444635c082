package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yndnr/bucketmap/internal/config"
	"github.com/yndnr/bucketmap/pkg/cmap"
)

// Duration is a time.Duration rounded to the microsecond that encodes as
// a string such as "107µs" in every output format.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).Round(time.Microsecond).String()
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts the string form written by MarshalJSON.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Latency holds the mean of the sampled latencies per operation.
type Latency struct {
	Find       Duration `json:"find" yaml:"find"`
	Insert     Duration `json:"insert" yaml:"insert"`
	Erase      Duration `json:"erase" yaml:"erase"`
	Accumulate Duration `json:"accumulate" yaml:"accumulate"`
}

// Result is the outcome of one Run.
type Result struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	Impl     string `json:"impl" yaml:"impl"`
	Workers  int    `json:"workers" yaml:"workers"`
	Buckets  int    `json:"buckets,omitempty" yaml:"buckets,omitempty"`
	Hasher   string `json:"hasher,omitempty" yaml:"hasher,omitempty"`
	KeySpace string `json:"key_space" yaml:"key_space"`

	Ops       int64    `json:"ops" yaml:"ops"`
	Elapsed   Duration `json:"elapsed" yaml:"elapsed"`
	OpsPerSec float64  `json:"ops_per_sec" yaml:"ops_per_sec"`

	Finds       int64 `json:"finds" yaml:"finds"`
	FindHits    int64 `json:"find_hits" yaml:"find_hits"`
	Inserts     int64 `json:"inserts" yaml:"inserts"`
	Erases      int64 `json:"erases" yaml:"erases"`
	Accumulates int64 `json:"accumulates" yaml:"accumulates"`

	// Errors counts inserts that a following find did not observe.
	Errors      int64   `json:"errors" yaml:"errors"`
	FinalLen    int     `json:"final_len" yaml:"final_len"`
	Interrupted bool    `json:"interrupted" yaml:"interrupted"`
	MeanLatency Latency `json:"mean_latency" yaml:"mean_latency" table:"wide"`

	Stats *cmap.Stats `json:"stats,omitempty" yaml:"stats,omitempty" table:"wide"`
}

func newResult(runID string, store Store, cfg config.BenchSection, stats []workerStats, elapsed time.Duration) *Result {
	res := &Result{
		RunID:    runID,
		Impl:     store.Name(),
		Workers:  cfg.Workers,
		KeySpace: cfg.KeySpace,
		Elapsed:  Duration(elapsed),
		FinalLen: store.Len(),
	}

	var sum workerStats
	for i := range stats {
		for op := range numOps {
			sum.ops[op] += stats[i].ops[op]
			sum.latency[op] += stats[i].latency[op]
			sum.samples[op] += stats[i].samples[op]
		}
		sum.hits += stats[i].hits
		sum.errors += stats[i].errors
	}

	res.Ops = sum.total()
	res.Finds = sum.ops[opFind]
	res.FindHits = sum.hits
	res.Inserts = sum.ops[opInsert]
	res.Erases = sum.ops[opErase]
	res.Accumulates = sum.ops[opAccumulate]
	res.Errors = sum.errors
	if elapsed > 0 {
		res.OpsPerSec = float64(res.Ops) / elapsed.Seconds()
	}

	mean := func(op opKind) Duration {
		if sum.samples[op] == 0 {
			return 0
		}
		return Duration(sum.latency[op] / time.Duration(sum.samples[op]))
	}
	res.MeanLatency = Latency{
		Find:       mean(opFind),
		Insert:     mean(opInsert),
		Erase:      mean(opErase),
		Accumulate: mean(opAccumulate),
	}

	if sharded, ok := store.(*ShardedStore); ok {
		st := sharded.Stats()
		res.Buckets = st.Buckets
		res.Hasher = cfg.Hasher
		res.Stats = &st
	}

	return res
}

// Comparison is a sharded run and a locked run over the same configuration.
type Comparison struct {
	Sharded *Result `json:"sharded" yaml:"sharded"`
	Locked  *Result `json:"locked" yaml:"locked"`

	// Speedup is sharded throughput divided by locked throughput.
	Speedup float64 `json:"speedup" yaml:"speedup"`
}

// Rows flattens the comparison into one row per implementation for
// table output.
func (c *Comparison) Rows() []*Result {
	return []*Result{c.Sharded, c.Locked}
}

// Compare runs the sharded store and then the locked store with the same
// configuration and seed. If ctx is cancelled during the first run the
// second is skipped.
func Compare(ctx context.Context, cfg config.BenchSection, opts ...RunnerOption) (*Comparison, error) {
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	var cmp Comparison
	for _, impl := range []string{config.ImplSharded, config.ImplLocked} {
		if err := ctx.Err(); err != nil {
			return &cmp, fmt.Errorf("compare %s: %w", impl, err)
		}

		store, err := NewStore(impl, cfg)
		if err != nil {
			return nil, err
		}
		res, err := NewRunner(cfg, opts...).Run(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", impl, err)
		}

		if impl == config.ImplSharded {
			cmp.Sharded = res
		} else {
			cmp.Locked = res
		}
	}

	if cmp.Locked.OpsPerSec > 0 {
		cmp.Speedup = cmp.Sharded.OpsPerSec / cmp.Locked.OpsPerSec
	}
	return &cmp, nil
}

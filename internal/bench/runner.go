package bench

import (
	"context"
	"crypto/rand"
	"errors"
	mrand "math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/bucketmap/internal/config"
	"github.com/yndnr/bucketmap/internal/telemetry/logger"
	"github.com/yndnr/bucketmap/internal/telemetry/metric"
)

// checkEvery is how many operations a worker runs between looking at its
// context and publishing progress.
const checkEvery = 256

type opKind int

const (
	opFind opKind = iota
	opInsert
	opErase
	opAccumulate
	numOps
)

var opNames = [numOps]string{"find", "insert", "erase", "accumulate"}

func (o opKind) String() string {
	return opNames[o]
}

// Runner drives a Store from several goroutines with a configured
// operation mix.
type Runner struct {
	cfg      config.BenchSection
	metrics  *metric.Registry
	progress func(impl string, done, total int64)
	interval time.Duration
	done     atomic.Int64
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithMetrics publishes operation counts, sampled latencies and table
// occupancy to reg while the run is in progress.
func WithMetrics(reg *metric.Registry) RunnerOption {
	return func(r *Runner) {
		r.metrics = reg
	}
}

// WithProgress calls fn every interval while a run is in progress and once
// more when it ends. total is 0 for duration-bound runs.
func WithProgress(interval time.Duration, fn func(impl string, done, total int64)) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
		r.interval = interval
	}
}

// NewRunner creates a runner for cfg. cfg is expected to have passed
// config.Verify.
func NewRunner(cfg config.BenchSection, opts ...RunnerOption) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Completed returns the operations finished so far in the current run.
// It lags the true count by at most checkEvery per worker.
func (r *Runner) Completed() int64 {
	return r.done.Load()
}

// Total returns the planned operation count, or 0 for duration-bound runs.
func (r *Runner) Total() int64 {
	if r.cfg.Duration > 0 {
		return 0
	}
	return int64(r.cfg.Workers) * int64(r.cfg.OpsPerWorker)
}

// KeyRange returns the inclusive key range [lo, hi] owned by worker.
//
// With doubling, worker 0 owns [1, base] and worker i owns
// [base<<(i-1)+1, base<<i], so each range is as large as all earlier ones
// together. With uniform every worker owns base keys.
func KeyRange(space string, base, worker int) (lo, hi int) {
	if space == config.KeySpaceUniform {
		return worker*base + 1, (worker + 1) * base
	}
	if worker == 0 {
		return 1, base
	}
	return base<<(worker-1) + 1, base << worker
}

// Run executes one benchmark against store and returns its result.
//
// Ranges never overlap, so a key is only ever written by one worker and an
// insert followed by a find on the same key must observe the inserted value.
// When Verify is set such mismatches are counted in Result.Errors.
//
// Cancelling ctx stops all workers early; the partial result is returned
// with Interrupted set.
func (r *Runner) Run(ctx context.Context, store Store) (*Result, error) {
	if store == nil {
		return nil, errors.New("bench: nil store")
	}
	if r.cfg.Workers < 1 || r.cfg.KeyRange < 1 || r.cfg.SampleEvery < 1 {
		return nil, errors.New("bench: workers, key_range and sample_every must be at least 1")
	}

	runID := newRunID()
	parent := logger.WithRunID(ctx, runID)
	log := logger.L(parent)

	ctx = parent
	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, r.cfg.Duration)
		defer cancel()
	}

	if r.metrics != nil {
		if sharded, ok := store.(*ShardedStore); ok {
			c := metric.NewTableCollector(store.Name(), sharded)
			if err := r.metrics.Register(c); err != nil {
				log.Warn("table collector not registered", "error", err)
			} else {
				defer r.metrics.Unregister(c)
			}
		}
	}

	seed := r.cfg.Seed
	if seed == 0 {
		seed = mrand.Uint64()
	}

	r.done.Store(0)
	log.Info("bench started",
		"impl", store.Name(),
		"workers", r.cfg.Workers,
		"ops_per_worker", r.cfg.OpsPerWorker,
		"duration", r.cfg.Duration,
		"key_space", r.cfg.KeySpace,
		"seed", seed,
	)

	stopProgress := r.reportProgress(store.Name())

	stats := make([]workerStats, r.cfg.Workers)
	start := time.Now()

	var wg sync.WaitGroup
	for i := range r.cfg.Workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stats[i] = r.work(logger.WithWorker(ctx, i), store, i, seed)
		}(i)
	}
	wg.Wait()
	stopProgress()

	res := newResult(runID, store, r.cfg, stats, time.Since(start))
	res.Interrupted = parent.Err() != nil

	if r.metrics != nil {
		r.metrics.RecordRun(store.Name())
	}

	if res.Interrupted {
		log.Warn("bench interrupted", "ops", res.Ops, "elapsed", res.Elapsed)
	}
	log.Info("bench finished",
		"impl", res.Impl,
		"ops", res.Ops,
		"elapsed", res.Elapsed,
		"ops_per_sec", int64(res.OpsPerSec),
		"errors", res.Errors,
		"len", res.FinalLen,
	)

	return res, nil
}

// reportProgress starts the progress ticker, if any. The returned func
// stops it and delivers the final count.
func (r *Runner) reportProgress(impl string) func() {
	if r.progress == nil {
		return func() {}
	}

	interval := r.interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.progress(impl, r.Completed(), r.Total())
			case <-stop:
				return
			}
		}
	}()

	return func() {
		close(stop)
		<-stopped
		r.progress(impl, r.Completed(), r.Total())
	}
}

// workerStats is what one worker reports back.
type workerStats struct {
	ops     [numOps]int64
	hits    int64
	errors  int64
	latency [numOps]time.Duration
	samples [numOps]int64
}

func (s *workerStats) total() int64 {
	var n int64
	for _, c := range s.ops {
		n += c
	}
	return n
}

func (r *Runner) work(ctx context.Context, store Store, worker int, seed uint64) workerStats {
	var st workerStats
	log := logger.L(ctx)

	lo, hi := KeyRange(r.cfg.KeySpace, r.cfg.KeyRange, worker)
	span := hi - lo + 1
	rng := mrand.New(mrand.NewPCG(seed, uint64(worker)))

	var limiter *rate.Limiter
	if r.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.RateLimit), 1)
	}

	if r.metrics != nil {
		r.metrics.IncWorkers()
		defer r.metrics.DecWorkers()
	}

	readCut := r.cfg.ReadRatio
	eraseCut := readCut + r.cfg.EraseRatio
	accCut := eraseCut + r.cfg.AccumulateRatio

	var pending [numOps]int64
	flush := func() {
		var n int64
		for op, c := range pending {
			if c == 0 {
				continue
			}
			if r.metrics != nil {
				r.metrics.AddOps(store.Name(), opKind(op).String(), int(c))
			}
			n += c
			pending[op] = 0
		}
		r.done.Add(n)
	}

	log.Debug("worker started", "lo", lo, "hi", hi)

	bounded := r.cfg.Duration == 0
	for n := 0; !bounded || n < r.cfg.OpsPerWorker; n++ {
		if n%checkEvery == 0 {
			flush()
			if ctx.Err() != nil {
				break
			}
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		key := lo + rng.IntN(span)
		p := rng.Float64()

		sampled := n%r.cfg.SampleEvery == 0
		var t0 time.Time
		if sampled {
			t0 = time.Now()
		}

		var op opKind
		switch {
		case p < readCut:
			op = opFind
			if _, ok := store.Find(key); ok {
				st.hits++
			}
		case p < eraseCut:
			op = opErase
			store.Erase(key)
		case p < accCut:
			op = opAccumulate
			store.Accumulate(key, 1)
		default:
			op = opInsert
			want := int64(n)
			store.Insert(key, want)
			if r.cfg.Verify {
				if got, ok := store.Find(key); !ok || got != want {
					st.errors++
					if st.errors == 1 {
						log.Warn("insert not visible to find",
							"key", key,
							"want", want,
							"got", got,
							"found", ok,
						)
					}
				}
			}
		}

		if sampled {
			d := time.Since(t0)
			st.latency[op] += d
			st.samples[op]++
			if r.metrics != nil {
				r.metrics.ObserveOp(store.Name(), op.String(), d.Seconds())
			}
		}
		st.ops[op]++
		pending[op]++
	}
	flush()

	log.Debug("worker finished", "ops", st.total(), "errors", st.errors)
	return st
}

// newRunID returns a lower-case ULID.
func newRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

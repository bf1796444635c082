package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bucketmap/internal/bench"
	"github.com/yndnr/bucketmap/internal/cli/output"
	"github.com/yndnr/bucketmap/internal/config"
	"github.com/yndnr/bucketmap/internal/infra/confloader"
	"github.com/yndnr/bucketmap/internal/infra/shutdown"
	"github.com/yndnr/bucketmap/internal/telemetry/logger"
	"github.com/yndnr/bucketmap/internal/telemetry/metric"
)

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a concurrent benchmark",
		Description: "Starts one goroutine per worker, each hammering its own key range with a\n" +
			"mix of finds, inserts, erases and accumulates. --impl both runs the sharded\n" +
			"table and the single-mutex map back to back and reports the speedup.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "impl", Usage: "Store under test: sharded, locked, both"},
			&cli.IntFlag{Name: "buckets", Aliases: []string{"b"}, Usage: "Bucket count of the sharded table"},
			&cli.StringFlag{Name: "hasher", Usage: "Key hash: maphash, murmur3, xxhash, identity"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"n"}, Usage: "Concurrent workers"},
			&cli.IntFlag{Name: "ops", Usage: "Operations per worker"},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Run for a fixed time instead of a fixed op count"},
			&cli.StringFlag{Name: "key-space", Usage: "Per-worker key ranges: doubling, uniform"},
			&cli.IntFlag{Name: "key-range", Usage: "Base size of a worker's key range"},
			&cli.Float64Flag{Name: "read-ratio", Usage: "Fraction of finds"},
			&cli.Float64Flag{Name: "erase-ratio", Usage: "Fraction of erases"},
			&cli.Float64Flag{Name: "accumulate-ratio", Usage: "Fraction of accumulates"},
			&cli.Float64Flag{Name: "rate-limit", Usage: "Max operations per second per worker (0 = unlimited)"},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed (0 = random)"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "Serve Prometheus metrics on this address during the run"},
			&cli.BoolFlag{Name: "watch", Usage: "Re-read the config file on change and apply log.level"},
			&cli.BoolFlag{Name: "no-progress", Usage: "Do not draw the progress bar"},
			&cli.BoolFlag{Name: "no-verify", Usage: "Skip the read-your-writes check after inserts"},
		},
		Action: runBench,
	}
}

func runBench(c *cli.Context) error {
	f, err := formatter(c)
	if err != nil {
		return err
	}

	cfg, loader, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(c, cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	hooks := shutdown.NewHooks(5 * time.Second)
	defer func() {
		if err := hooks.Run(log); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}()

	var opts []bench.RunnerOption

	if cfg.Metrics.Enabled {
		reg := metric.Global()
		srv, err := serveMetrics(cfg.Metrics.Addr, reg, log)
		if err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		hooks.Add("metrics server", srv.Shutdown)
		opts = append(opts, bench.WithMetrics(reg))
	}

	if c.Bool("watch") {
		w, err := watchConfig(loader, log)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		if w != nil {
			hooks.Add("config watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	p := output.NewProgress(stderr(c))
	defer p.Finish()
	if cfg.Bench.Progress {
		opts = append(opts, bench.WithProgress(200*time.Millisecond, p.Update))
	}

	if cfg.Bench.Impl == config.ImplBoth {
		cmp, err := bench.Compare(ctx, cfg.Bench, opts...)
		p.Finish()
		if err != nil {
			if cmp == nil || !errors.Is(err, context.Canceled) {
				return err
			}
			log.Warn("comparison interrupted", "error", err)
		}
		return writeComparison(c, f, cmp)
	}

	store, err := bench.NewStore(cfg.Bench.Impl, cfg.Bench)
	if err != nil {
		return err
	}
	res, err := bench.NewRunner(cfg.Bench, opts...).Run(ctx, store)
	p.Finish()
	if err != nil {
		return err
	}
	return f.Format(stdout(c), res)
}

// writeComparison prints one row or line per store for the table and
// jsonl formats, and the whole comparison for the document formats.
func writeComparison(c *cli.Context, f output.Formatter, cmp *bench.Comparison) error {
	var rows []*bench.Result
	for _, r := range cmp.Rows() {
		if r != nil {
			rows = append(rows, r)
		}
	}

	switch ff := f.(type) {
	case *output.JSONFormatter:
		if ff.Lines {
			return f.Format(stdout(c), rows)
		}
		return f.Format(stdout(c), cmp)
	case *output.TableFormatter:
	default:
		return f.Format(stdout(c), cmp)
	}

	if err := f.Format(stdout(c), rows); err != nil {
		return err
	}
	if cmp.Speedup > 0 {
		fmt.Fprintf(stdout(c), "\nspeedup: %.2fx\n", cmp.Speedup)
	}
	return nil
}

// serveMetrics starts the /metrics endpoint in the background.
func serveMetrics(addr string, reg *metric.Registry, log logger.Logger) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Surface bind errors before the run starts.
	select {
	case err := <-errCh:
		return nil, err
	case <-time.After(50 * time.Millisecond):
		return srv, nil
	}
}

// watchConfig re-reads the config file on change and applies log.level.
// Other settings only take effect on the next run.
func watchConfig(loader *confloader.Loader, log logger.Logger) (*confloader.Watcher, error) {
	path := loader.FilePath()
	if path == "" {
		log.Warn("--watch has no effect without --config")
		return nil, nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		return nil, errors.Join(fmt.Errorf("watch %s: %w", path, err), w.Stop())
	}

	w.OnChange(func(string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		next = config.Sanitize(next)
		if err := config.Verify(next); err != nil {
			log.Warn("reloaded config rejected", "error", err)
			return
		}
		if next.Log.Level != logger.GetLevel() {
			if err := logger.SetLevel(next.Log.Level); err != nil {
				log.Warn("log level not changed", "error", err)
				return
			}
			log.Info("log level changed", "level", next.Log.Level)
		}
	})
	w.Start()

	return w, nil
}

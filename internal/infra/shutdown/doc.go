// Package shutdown stops a benchmark run cleanly.
//
// WithSignals turns SIGINT and SIGTERM into context cancellation, so the
// runner's workers return early with a partial result. Hooks releases
// what the run started (metrics server, config watcher) in reverse order
// under one deadline:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//	hooks := shutdown.NewHooks(5 * time.Second)
//	defer hooks.Run(log)
//	hooks.Add("metrics server", srv.Shutdown)
package shutdown

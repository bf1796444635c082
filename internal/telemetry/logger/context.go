package logger

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	runIDKey
	workerKey
)

// WithLogger stores l in ctx for L and FromContext.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRunID tags ctx with the ULID of a benchmark run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID returns the run ID carried by ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithWorker tags ctx with a worker index. Worker 0 is a valid index.
func WithWorker(ctx context.Context, worker int) context.Context {
	return context.WithValue(ctx, workerKey, worker)
}

// Worker returns the worker index carried by ctx.
func Worker(ctx context.Context) (int, bool) {
	w, ok := ctx.Value(workerKey).(int)
	return w, ok
}

// L returns the logger from ctx with run_id and worker attributes added
// when ctx carries them.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	var attrs []any
	if id := RunID(ctx); id != "" {
		attrs = append(attrs, "run_id", id)
	}
	if w, ok := Worker(ctx); ok {
		attrs = append(attrs, "worker", w)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

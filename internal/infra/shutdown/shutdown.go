package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/bucketmap/internal/telemetry/logger"
)

// WithSignals returns a copy of parent that is cancelled on the first
// SIGINT or SIGTERM. After stop, a second signal kills the process as usual.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

type hook struct {
	name string
	fn   func(context.Context) error
}

// Hooks is a stack of named cleanup functions.
type Hooks struct {
	timeout time.Duration

	mu    sync.Mutex
	stack []hook

	once sync.Once
	err  error
}

// NewHooks returns an empty stack whose Run gives all hooks timeout to finish.
func NewHooks(timeout time.Duration) *Hooks {
	return &Hooks{timeout: timeout}
}

// Add pushes a hook. Hooks added after Run has started are never called.
func (h *Hooks) Add(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = append(h.stack, hook{name: name, fn: fn})
}

// Run pops and calls every hook, newest first, sharing one deadline. A
// failing hook does not stop the rest; all failures are joined, each
// prefixed with its hook name. Only the first call does any work.
func (h *Hooks) Run(log logger.Logger) error {
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		stack := h.stack
		h.stack = nil
		h.mu.Unlock()

		var errs []error
		for i := len(stack) - 1; i >= 0; i-- {
			hk := stack[i]
			start := time.Now()
			if err := hk.fn(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", hk.name, err))
				continue
			}
			if log != nil {
				log.Debug("stopped", "hook", hk.name, "took", time.Since(start))
			}
		}
		h.err = errors.Join(errs...)
	})
	return h.err
}

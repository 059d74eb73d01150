// Package interrupt turns SIGINT/SIGTERM into context cancellation with a
// double Ctrl+C escape hatch.
//
// The first signal cancels the run's context: in-flight model calls return
// and no output file is written. A second signal within the window exits the
// process at once.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ExitInterrupt is the exit code for interrupt (130 = 128 + SIGINT).
const ExitInterrupt = 130

// window is the time allowed for a second Ctrl+C to force an exit.
const window = 2 * time.Second

const (
	cancelMessage = "\nInterrupted: cancelling pending model calls (Ctrl+C again to abort)."
	abortMessage  = "\nAborted."
)

// Handler cancels a context on the first signal and exits on a quick second one.
type Handler struct {
	mu      sync.Mutex
	first   time.Time
	hits    int
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	stopSig func()

	exit   func(int)
	now    func() time.Time
	stderr io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	SigCh    <-chan os.Signal
	ExitFunc func(int)
	NowFunc  func() time.Time
	// Stderr must be safe for concurrent writes.
	Stderr io.Writer
}

// NewHandler listens for SIGINT and SIGTERM.
// The returned context is canceled on the first signal.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	h, ctx := NewHandlerWithOptions(parent, Options{SigCh: sigCh})
	h.stopSig = func() { signal.Stop(sigCh) }
	return h, ctx
}

// NewHandlerWithOptions creates a handler with injectable dependencies.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	h := &Handler{
		cancel:  cancel,
		done:    make(chan struct{}),
		stopSig: func() {},
		exit:    opts.ExitFunc,
		now:     opts.NowFunc,
		stderr:  opts.Stderr,
	}
	if h.exit == nil {
		h.exit = os.Exit
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.stderr == nil {
		h.stderr = os.Stderr
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}
	return h, ctx
}

func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case _, ok := <-sigCh:
			if !ok {
				return
			}
			if h.handle() {
				return
			}
		}
	}
}

// handle processes one signal and reports whether the listener should stop.
func (h *Handler) handle() bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return true
	}
	now := h.now()
	h.hits++

	if h.hits == 1 || now.Sub(h.first) > window {
		h.first = now
		h.hits = 1
		h.mu.Unlock()
		h.cancel()
		fmt.Fprintln(h.stderr, cancelMessage)
		return false
	}
	h.mu.Unlock()

	fmt.Fprintln(h.stderr, abortMessage)
	h.exit(ExitInterrupt)
	return true
}

// Interrupted reports whether at least one signal was received.
func (h *Handler) Interrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits > 0
}

// Stop releases the signal subscription. It is safe to call more than once.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	h.stopSig()
	close(h.done)
	h.cancel()
}

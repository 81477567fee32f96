// Package signal turns SIGINT and SIGTERM into context cancellation for a
// build. Canceling the context kills the running xcodebuild (or ditto,
// dwarfdump) and the pipeline stops before its next step. Output already on
// disk is left alone.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context on the first interrupt signal.
type Handler struct {
	ctx    context.Context //nolint:containedctx // the handler owns this context's lifetime
	cancel context.CancelFunc

	signals     chan os.Signal
	interrupted chan struct{}
	stopped     chan struct{}

	mu       sync.Mutex
	received os.Signal

	fireOnce sync.Once
	stopOnce sync.Once
}

// NewHandler derives a cancellable context from parent and starts listening
// for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	err := run(h.Context())
//	if err != nil && h.WasInterrupted() {
//	    // report the interruption
//	}
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		signals:     make(chan os.Signal, 1),
		interrupted: make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context is canceled by an interrupt, by Stop, or with its parent.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed once an interrupt has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// WasInterrupted reports whether an interrupt has been received.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Signal returns the interrupt that canceled the context, or nil.
func (h *Handler) Signal() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops listening and cancels the context. It is safe to call more
// than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.signals)
		close(h.stopped)
		h.cancel()
	})
}

// handleSignal records sig and cancels the context. Only the first signal counts.
func (h *Handler) handleSignal(sig os.Signal) {
	h.fireOnce.Do(func() {
		h.mu.Lock()
		h.received = sig
		h.mu.Unlock()

		h.cancel()
		close(h.interrupted)
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.stopped:
			return
		case <-h.ctx.Done():
			return
		case sig := <-h.signals:
			h.handleSignal(sig)
		}
	}
}

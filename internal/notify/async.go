package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// AsyncOption configures an Async wrapper.
type AsyncOption func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) AsyncOption {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner sink's Publish fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) AsyncOption {
	return func(a *Async) { a.errFunc = f }
}

// Async decouples ingestion from notice delivery via a buffered channel.
// Publish never blocks the request path: when the buffer is full the notice
// is dropped with a warning. Delivery errors go to errFunc, never to the
// caller.
type Async struct {
	inner     Sink
	ch        chan Notice
	done      chan struct{}
	errFunc   func(error)
	bufSize   int
	closeOnce sync.Once
}

// NewAsync wraps a sink in an async channel-based publisher.
// The background drain goroutine starts immediately.
func NewAsync(inner Sink, opts ...AsyncOption) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		errFunc: func(err error) { slog.Warn("notice delivery failed", "err", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan Notice, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Publish enqueues the notice, dropping it when the buffer is full.
func (a *Async) Publish(_ context.Context, n Notice) error {
	select {
	case a.ch <- n:
	default:
		slog.Warn("notice buffer full, dropping", "build_id", n.BuildID)
	}
	return nil
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner sink.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			slog.Warn("notice drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

// drain reads notices from the channel and publishes them to the inner sink.
func (a *Async) drain() {
	defer close(a.done)
	for n := range a.ch {
		if err := a.inner.Publish(context.Background(), n); err != nil {
			a.errFunc(err)
		}
	}
}

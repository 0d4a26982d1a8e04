// Package loadstate tracks one asynchronous document load for the lifetime of
// a page render.
package loadstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the phase of a load.
type Status int

const (
	Loading Status = iota
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "loading"
	}
}

// State is an immutable snapshot of a load.
type State[T any] struct {
	status Status
	data   T
	cause  string
}

// Status returns the current phase.
func (s State[T]) Status() Status { return s.status }

// Data returns the payload and whether the load is ready.
func (s State[T]) Data() (T, bool) { return s.data, s.status == Ready }

// Cause returns the failure description for a failed load.
func (s State[T]) Cause() string { return s.cause }

func (s State[T]) IsLoading() bool { return s.status == Loading }
func (s State[T]) IsReady() bool   { return s.status == Ready }
func (s State[T]) IsFailed() bool  { return s.status == Failed }

// ReadyState and FailedState build settled snapshots, mostly for tests and
// for renderers fed from precomputed data.
func ReadyState[T any](data T) State[T] { return State[T]{status: Ready, data: data} }

func FailedState[T any](cause string) State[T] {
	if cause == "" {
		cause = "load failed"
	}
	return State[T]{status: Failed, cause: cause}
}

// Observer is notified once per settled load.
type Observer func(name string, status Status, elapsed time.Duration)

// Task runs one fetch. It starts loading and settles at most once.
type Task[T any] struct {
	name     string
	logger   *zap.Logger
	observer Observer

	mu        sync.Mutex
	state     State[T]
	cancelled bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures a Task.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver reports settled loads, e.g. to metrics.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// Start launches fetch in its own goroutine. Failures, including panics, are
// logged and recorded on the task; they never propagate to the caller.
func Start[T any](ctx context.Context, logger *zap.Logger, name string, fetch func(context.Context) (T, error), opts ...Option) *Task[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		name:     name,
		logger:   logger,
		observer: o.observer,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.run(ctx, fetch)
	return t
}

func (t *Task[T]) run(ctx context.Context, fetch func(context.Context) (T, error)) {
	defer close(t.done)
	defer t.cancel()
	start := time.Now()

	data, err := safeFetch(ctx, fetch)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		t.logger.Debug("load result discarded", zap.String("document", t.name))
		return
	}
	if err != nil {
		t.logger.Error("document load failed", zap.String("document", t.name), zap.Error(err))
		t.state = FailedState[T](fmt.Sprintf("%s: %v", t.name, err))
	} else {
		t.state = ReadyState(data)
	}
	if t.observer != nil {
		t.observer(t.name, t.state.status, time.Since(start))
	}
}

func safeFetch[T any](ctx context.Context, fetch func(context.Context) (T, error)) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	data, err = fetch(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return data, err
}

// Name returns the document name the task was started with.
func (t *Task[T]) Name() string { return t.name }

// State returns a snapshot without blocking.
func (t *Task[T]) State() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed once the fetch has returned.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait blocks until the task settles or ctx ends, then returns the snapshot.
// When ctx ends first the task is cancelled and stays loading.
func (t *Task[T]) Wait(ctx context.Context) State[T] {
	select {
	case <-t.done:
	case <-ctx.Done():
		t.Cancel()
	}
	return t.State()
}

// Cancel drops any result that has not been applied yet. It is safe to call
// more than once and after the task settled.
func (t *Task[T]) Cancel() {
	t.mu.Lock()
	settled := t.state.status != Loading
	if !settled {
		t.cancelled = true
	}
	t.mu.Unlock()
	t.cancel()
}

// Package request tracks the loading, error and data lifecycle of one
// asynchronous operation at a time.
package request

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/me/classroom/pkg/model"
)

// Op is the operation an Executor runs.
type Op[T any] func(ctx context.Context) (T, error)

// State is a snapshot of an Executor. A nil Data means no result yet.
type State[T any] struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Data    *T     `json:"data,omitempty"`
}

// Executor runs operations and records the outcome of the most recent one.
// Calls may overlap; only the latest call to start writes Data and Error.
type Executor[T any] struct {
	mu     sync.Mutex
	state  State[T]
	latest uint64

	fallback string
	logger   *slog.Logger
}

// NewExecutor returns an idle Executor. A nil logger discards logs.
func NewExecutor[T any](logger *slog.Logger) *Executor[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor[T]{
		fallback: model.GenericErrorMessage,
		logger:   logger.With("component", "request"),
	}
}

// SetFallback overrides the message used when a failure carries none.
func (e *Executor[T]) SetFallback(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = msg
}

// Execute runs op and returns its outcome. Loading is true while the latest
// call is in flight and always cleared when it settles, even if op panics.
func (e *Executor[T]) Execute(ctx context.Context, op Op[T]) (out model.Outcome[T]) {
	id, fallback := e.begin()
	defer func() { e.settle(id, out) }()

	data, err := e.call(ctx, op)
	if err != nil {
		msg := model.UserMessage(err, fallback)
		e.logger.Debug("operation failed", "request", id, "error", err)
		return model.Failed[T](msg)
	}
	e.logger.Debug("operation succeeded", "request", id)
	return model.Succeeded(data)
}

// call runs op, converting a panic into an error.
func (e *Executor[T]) call(ctx context.Context, op Op[T]) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("operation panicked", "panic", r)
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx)
}

func (e *Executor[T]) begin() (uint64, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest++
	e.state.Loading = true
	e.state.Error = ""
	return e.latest, e.fallback
}

func (e *Executor[T]) settle(id uint64, out model.Outcome[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != e.latest {
		e.logger.Debug("discarding stale result", "request", id, "latest", e.latest)
		return
	}
	e.state.Loading = false
	if out.Success {
		data := out.Data
		e.state.Data = &data
		e.state.Error = ""
	} else {
		e.state.Error = out.Error
	}
}

// Reset returns the Executor to its initial state. Calls still in flight
// will not write their results.
func (e *Executor[T]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.latest++
	e.state = State[T]{}
}

// State returns a snapshot of the current state.
func (e *Executor[T]) State() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.state
	if s.Data != nil {
		data := *s.Data
		s.Data = &data
	}
	return s
}
